package components

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/atomic"

	"github.com/abhisek/learninghub/internal/ui/theme"
)

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// SpinnerInterval is the frame period of Spinner.
const SpinnerInterval = 120 * time.Millisecond

// SpinnerTickMsg advances every Spinner with the same ID.
type SpinnerTickMsg struct {
	ID int
}

// Spinner is a small loading indicator. A static Spinner (reduced motion)
// never schedules ticks.
type Spinner struct {
	ID     int
	Static bool
	frame  int
}

var spinnerIDs = atomic.NewInt64(0)

// NewSpinner returns a spinner with a fresh ID.
func NewSpinner(static bool) Spinner {
	return Spinner{ID: int(spinnerIDs.Inc()), Static: static}
}

// Tick schedules the next frame.
func (s Spinner) Tick() tea.Cmd {
	if s.Static {
		return nil
	}
	id := s.ID
	return tea.Tick(SpinnerInterval, func(time.Time) tea.Msg { return SpinnerTickMsg{ID: id} })
}

// Update advances on its own tick and reschedules while active is true.
func (s Spinner) Update(msg tea.Msg, active bool) (Spinner, tea.Cmd) {
	t, ok := msg.(SpinnerTickMsg)
	if !ok || t.ID != s.ID || s.Static {
		return s, nil
	}
	s.frame = (s.frame + 1) % len(spinnerFrames)
	if !active {
		return s, nil
	}
	return s, s.Tick()
}

// View renders the current frame.
func (s Spinner) View() string {
	if s.Static {
		return "…"
	}
	return spinnerFrames[s.frame]
}

// Loading renders the loading state of a data-driven screen.
func Loading(s Spinner, text string) string {
	return lipgloss.NewStyle().Foreground(theme.Primary).Render(s.View()) + " " +
		theme.Hint.Render(text)
}

// ErrorBanner renders the error state with its retry hint.
func ErrorBanner(message, hint string) string {
	return theme.Banner.Render(message) + "\n\n" + theme.Hint.Render(hint)
}
