package app

import (
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/screens/accessibility"
	"github.com/abhisek/learninghub/internal/screens/aicore"
	"github.com/abhisek/learninghub/internal/screens/assessment"
	"github.com/abhisek/learninghub/internal/screens/lesson"
	"github.com/abhisek/learninghub/internal/screens/login"
	"github.com/abhisek/learninghub/internal/screens/missionmap"
	"github.com/abhisek/learninghub/internal/screens/modulemap"
	"github.com/abhisek/learninghub/internal/screens/pathoverview"
	"github.com/abhisek/learninghub/internal/screens/profile"
	"github.com/abhisek/learninghub/internal/screens/register"
	"github.com/abhisek/learninghub/internal/screens/teacher"
	"github.com/abhisek/learninghub/internal/screens/welcome"
)

// Factory builds every screen of the app from d.
func Factory(d *screen.Deps) router.Factory {
	return func(s nav.Screen, p nav.Params) screen.Screen {
		switch s {
		case nav.Map:
			return missionmap.New(d)
		case nav.PathOverview:
			return pathoverview.New(d, p)
		case nav.ModuleMap:
			return modulemap.New(d, p)
		case nav.Lesson:
			return lesson.New(d, p)
		case nav.Assessment:
			return assessment.New(d, p)
		case nav.AICore:
			return aicore.New(d)
		case nav.Accessibility:
			return accessibility.New(d)
		case nav.Login:
			return login.New(d)
		case nav.Register:
			return register.New(d)
		case nav.UserProfile:
			return profile.New(d)
		case nav.TeacherDashboard:
			return teacher.New(d)
		}
		return welcome.New(d)
	}
}
