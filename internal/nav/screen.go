package nav

// Screen identifies one full-page view of the application.
type Screen int

const (
	Welcome Screen = iota
	Map
	PathOverview
	ModuleMap
	Lesson
	Assessment
	AICore
	Accessibility
	Login
	Register
	UserProfile
	TeacherDashboard
)

// Landing is the screen an unrecognized identifier resolves to.
const Landing = Welcome

var screenNames = [...]string{
	Welcome:          "welcome",
	Map:              "map",
	PathOverview:     "path-overview",
	ModuleMap:        "module-map",
	Lesson:           "lesson",
	Assessment:       "assessment",
	AICore:           "ai-core",
	Accessibility:    "accessibility",
	Login:            "login",
	Register:         "register",
	UserProfile:      "user-profile",
	TeacherDashboard: "teacher-dashboard",
}

// Screens lists every screen in declaration order.
func Screens() []Screen {
	out := make([]Screen, len(screenNames))
	for i := range screenNames {
		out[i] = Screen(i)
	}
	return out
}

// Valid reports whether s belongs to the closed screen enumeration.
func (s Screen) Valid() bool {
	return s >= 0 && int(s) < len(screenNames)
}

func (s Screen) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return screenNames[s]
}

// IsAuth reports whether s is one of the authentication screens.
func (s Screen) IsAuth() bool {
	return s == Login || s == Register
}

// ParseScreen maps a screen name to its identifier. Unknown names resolve to
// Landing and ok is false.
func ParseScreen(name string) (s Screen, ok bool) {
	for i, n := range screenNames {
		if n == name {
			return Screen(i), true
		}
	}
	return Landing, false
}
