package transfer

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// csvColumns is the header row understood by CSV import.
const csvColumns = "stem,A,B,C,D,E,answer_key,explanation,tags,difficulty,references"

// TransferScreen imports and exports the bank.
type TransferScreen struct {
	env  *screen.Env
	menu components.Menu
}

var _ screen.Screen = (*TransferScreen)(nil)
var _ screen.KeyHintProvider = (*TransferScreen)(nil)

// New creates the import/export screen.
func New(env *screen.Env) *TransferScreen {
	t := &TransferScreen{env: env}
	t.menu = components.NewMenu([]components.MenuItem{
		{Label: "Import JSON", Hint: "merge by id", Action: func() tea.Cmd { return env.Import(screen.ImportJSONMerge) }},
		{Label: "Import JSON", Hint: "replace the bank", Action: func() tea.Cmd { return env.Import(screen.ImportJSONReplace) }},
		{Label: "Import CSV", Hint: "append rows", Action: func() tea.Cmd { return env.Import(screen.ImportCSV) }},
		{Label: "Export JSON", Action: func() tea.Cmd { return env.ExportBank(false) }},
		{Label: "Export CSV", Action: func() tea.Cmd { return env.ExportBank(true) }},
	})
	return t
}

func (t *TransferScreen) Init() tea.Cmd {
	return nil
}

func (t *TransferScreen) Title() string {
	return "Import / Export"
}

func (t *TransferScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (t *TransferScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	t.menu, cmd = t.menu.Update(msg)
	return t, cmd
}

func (t *TransferScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Import / Export"))
	b.WriteString("\n\n")
	b.WriteString(t.menu.View())
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("CSV columns:\n" + csvColumns))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Tags are comma separated, references semicolon separated."))

	card := theme.Card.Width(min(width-4, 84)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
