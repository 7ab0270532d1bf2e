// Package screen defines the contract between the router and the screens it
// hosts, plus the dependencies screens are built with.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens holding in-flight work. The router calls
// Close when the screen is deactivated.
type Closer interface {
	Close()
}

// Retargeter is implemented by screens that can switch to new navigation
// parameters without being rebuilt. Retarget returns the command that
// fetches the new identifier.
type Retargeter interface {
	Retarget(p nav.Params) tea.Cmd
}

// InputCapturer is implemented by screens with text entry. While
// CapturesInput is true the app forwards every key to the screen instead of
// treating tab, ":" or esc as global shortcuts.
type InputCapturer interface {
	CapturesInput() bool
}
