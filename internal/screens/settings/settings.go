package settings

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

const toggleIndex = 0

// SettingsScreen shows the storage locations and snapshot controls.
type SettingsScreen struct {
	env  *screen.Env
	menu components.Menu
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates the settings screen.
func New(env *screen.Env) *SettingsScreen {
	s := &SettingsScreen{env: env}
	s.menu = components.NewMenu([]components.MenuItem{
		{Action: func() tea.Cmd { return env.SetAutoSnapshots(!env.State.AutoSnapshot) }},
		{Label: "Snapshot now", Action: func() tea.Cmd { return env.SnapshotNow(false) }},
	})
	return s
}

// toggleLabel reflects the current preference.
func (s *SettingsScreen) toggleLabel() string {
	if s.env.State.AutoSnapshot {
		return "Auto-snapshots: On"
	}
	return "Auto-snapshots: Off"
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SettingsScreen) View(width, height int) string {
	info := s.env.State.Info
	s.menu.Items[toggleIndex].Label = s.toggleLabel()

	row := func(label, value string) string {
		return theme.Label.Width(12).Render(label) + theme.Body.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Storage"))
	b.WriteString("\n\n")
	b.WriteString(row("Data", info.DataPath))
	b.WriteString(row("Items", info.ItemsPath))
	b.WriteString(row("History", info.HistoryPath))
	b.WriteString(row("Snapshots", info.SnapshotsPath))
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("Snapshots"))
	b.WriteString("\n\n")
	b.WriteString(row("Interval", formatInterval(info.SnapshotInterval)))
	b.WriteString("\n")
	b.WriteString(s.menu.View())

	card := theme.Card.Width(min(width-4, 96)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func formatInterval(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	if seconds%60 == 0 {
		return fmt.Sprintf("every %d min", seconds/60)
	}
	return fmt.Sprintf("every %d s", seconds)
}
