package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns a command to run each time the screen becomes active.
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

// Capturer is implemented by screens that consume Esc themselves, such as
// while a form or search field has focus.
type Capturer interface {
	Capturing() bool
}
