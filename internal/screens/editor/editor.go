// Package editor is the question editor: a searchable list of items with an
// edit form, delete confirmation and media attachment.
package editor

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

// EditorScreen lists, edits and deletes bank items.
type EditorScreen struct {
	env    *screen.Env
	mode   mode
	cursor int
	search components.TextInput
	form   form
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)
var _ screen.Capturer = (*EditorScreen)(nil)

// New creates the editor screen.
func New(env *screen.Env) *EditorScreen {
	return &EditorScreen{
		env:    env,
		search: components.NewTextInput("Search", "text in the stem", false, 0),
	}
}

func (e *EditorScreen) Init() tea.Cmd {
	e.mode = modeList
	e.syncCursor()
	return nil
}

func (e *EditorScreen) Title() string {
	return "Question Editor"
}

// Capturing reports whether Esc belongs to the search field, form or
// delete prompt.
func (e *EditorScreen) Capturing() bool {
	return e.mode != modeList
}

func (e *EditorScreen) KeyHints() []layout.KeyHint {
	switch e.mode {
	case modeSearch:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Clear"},
		}
	case modeForm:
		return []layout.KeyHint{
			{Key: "Tab/↓", Description: "Next"},
			{Key: "Shift+Tab/↑", Description: "Prev"},
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmDelete:
		return []layout.KeyHint{
			{Key: "y", Description: "Delete"},
			{Key: "n", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Edit"},
		{Key: "n", Description: "New"},
		{Key: "d", Description: "Delete"},
		{Key: "/", Description: "Search"},
		{Key: "i/a", Description: "Image/Audio"},
		{Key: "Esc", Description: "Back"},
	}
}

// syncCursor points the cursor at the selected item, or selects the item
// under the cursor.
func (e *EditorScreen) syncCursor() {
	items := e.env.State.FilteredItems()
	if len(items) == 0 {
		e.cursor = 0
		e.env.State.SelectItem("")
		return
	}
	for i, it := range items {
		if it.ID == e.env.State.Editor.SelectedID {
			e.cursor = i
			return
		}
	}
	e.cursor = min(max(e.cursor, 0), len(items)-1)
	e.env.State.SelectItem(items[e.cursor].ID)
}

func (e *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, e.forward(msg)
	}

	switch e.mode {
	case modeSearch:
		return e, e.updateSearch(kmsg)
	case modeForm:
		return e, e.updateForm(kmsg)
	case modeConfirmDelete:
		return e, e.updateConfirm(kmsg)
	}
	return e, e.updateList(kmsg)
}

// forward passes non-key messages, such as cursor blinks, to the focused
// input.
func (e *EditorScreen) forward(msg tea.Msg) tea.Cmd {
	switch e.mode {
	case modeSearch:
		var cmd tea.Cmd
		e.search, cmd = e.search.Update(msg)
		return cmd
	case modeForm:
		return e.form.update(msg)
	}
	return nil
}

func (e *EditorScreen) updateList(kmsg tea.KeyMsg) tea.Cmd {
	st := e.env.State
	items := st.FilteredItems()

	switch kmsg.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
			st.SelectItem(items[e.cursor].ID)
		}
	case "down", "j":
		if e.cursor < len(items)-1 {
			e.cursor++
			st.SelectItem(items[e.cursor].ID)
		}
	case "/":
		e.mode = modeSearch
		e.search.SetValue(st.Editor.Search)
		e.search.Model.CursorEnd()
		return e.search.Focus()
	case "n":
		it := st.NewItem()
		st.SetSearch("")
		e.syncCursor()
		return tea.Batch(e.env.SaveItems(), e.openForm(it))
	case "enter", "e":
		if it, ok := st.SelectedItem(); ok {
			return e.openForm(it)
		}
	case "d":
		if _, ok := st.SelectedItem(); ok {
			e.mode = modeConfirmDelete
		}
	case "i":
		if it, ok := st.SelectedItem(); ok {
			return e.env.CopyMedia(it.ID, store.MediaImages)
		}
	case "a":
		if it, ok := st.SelectedItem(); ok {
			return e.env.CopyMedia(it.ID, store.MediaAudio)
		}
	}
	return nil
}

func (e *EditorScreen) openForm(it bank.Item) tea.Cmd {
	var cmd tea.Cmd
	e.form, cmd = newForm(it)
	e.mode = modeForm
	return cmd
}

func (e *EditorScreen) updateSearch(kmsg tea.KeyMsg) tea.Cmd {
	switch kmsg.String() {
	case "enter":
		e.search.Blur()
		e.mode = modeList
		return nil
	case "esc":
		e.search.Blur()
		e.search.SetValue("")
		e.env.State.SetSearch("")
		e.mode = modeList
		e.syncCursor()
		return nil
	}
	var cmd tea.Cmd
	e.search, cmd = e.search.Update(kmsg)
	e.env.State.SetSearch(e.search.Value())
	e.cursor = 0
	e.env.State.SelectItem("")
	e.syncCursor()
	return cmd
}

func (e *EditorScreen) updateForm(kmsg tea.KeyMsg) tea.Cmd {
	switch kmsg.String() {
	case "esc":
		e.mode = modeList
		return nil
	case "tab", "down":
		return e.form.move(1)
	case "shift+tab", "up":
		return e.form.move(-1)
	case "ctrl+s":
		it, err := e.form.item()
		if err != nil {
			return screen.Alert(err.Error())
		}
		if err := e.env.State.UpdateItem(it); err != nil {
			if errors.Is(err, controller.ErrInvalidAnswerKey) {
				return screen.Alert("Answer key must be A, B, C, D or E.")
			}
			return screen.Alert(err.Error())
		}
		e.mode = modeList
		e.syncCursor()
		return tea.Batch(e.env.SaveItems(), screen.Toast("Question saved."))
	}
	return e.form.update(kmsg)
}

func (e *EditorScreen) updateConfirm(kmsg tea.KeyMsg) tea.Cmd {
	switch kmsg.String() {
	case "y", "Y":
		e.mode = modeList
		if !e.env.State.DeleteItem(e.env.State.Editor.SelectedID) {
			return nil
		}
		e.syncCursor()
		return tea.Batch(e.env.SaveItems(), screen.Toast("Question deleted."))
	case "n", "N", "esc":
		e.mode = modeList
	}
	return nil
}

func (e *EditorScreen) View(width, height int) string {
	if e.mode == modeForm {
		return lipgloss.NewStyle().Padding(0, 2).Render(e.form.view(min(width-4, 100), height))
	}

	items := e.env.State.FilteredItems()
	listWidth := width - 4
	showDetail := !layout.IsCompactWidth(width)
	if showDetail {
		listWidth = width / 2
	}

	var b strings.Builder
	if e.mode == modeSearch {
		e.search.SetWidth(listWidth - 4)
		b.WriteString(e.search.View())
		b.WriteString("\n\n")
	} else if q := e.env.State.Editor.Search; q != "" {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Filter: %q", q)))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d questions", len(items), len(e.env.State.Items))))
	b.WriteString("\n\n")

	// Keep the cursor on screen.
	rows := max(height-8, 1)
	start := 0
	if e.cursor >= rows {
		start = e.cursor - rows + 1
	}
	for i := start; i < len(items) && i < start+rows; i++ {
		label := screen.ItemLabel(items[i], listWidth-4)
		if i == e.cursor {
			b.WriteString(theme.Selected.Render("▸ " + label))
		} else {
			b.WriteString(theme.Unselected.Render("  " + label))
		}
		b.WriteString("\n")
	}

	list := lipgloss.NewStyle().Width(listWidth).PaddingLeft(2).Render(b.String())
	if !showDetail {
		return list + e.confirmLine()
	}
	detail := e.renderDetail(width - listWidth - 4)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail) + e.confirmLine()
}

func (e *EditorScreen) confirmLine() string {
	if e.mode != modeConfirmDelete {
		return ""
	}
	return "\n" + theme.Alert.Render("  Delete this question? (y/n)")
}

func (e *EditorScreen) renderDetail(width int) string {
	it, ok := e.env.State.SelectedItem()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(it.Stem))
	b.WriteString("\n\n")
	b.WriteString(components.ChoiceList{
		Choices:  it.Choices,
		Key:      it.AnswerKey,
		Revealed: true,
	}.View())
	b.WriteString("\n")
	if len(it.Tags) > 0 {
		b.WriteString(theme.Hint.Render("Tags: " + strings.Join(it.Tags, ", ")))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Difficulty: %d", it.Difficulty)))
	b.WriteString("\n")
	if it.Image != nil {
		b.WriteString(theme.Hint.Render("Image: " + *it.Image))
		b.WriteString("\n")
	}
	if it.Audio != nil {
		b.WriteString(theme.Hint.Render("Audio: " + *it.Audio))
		b.WriteString("\n")
	}
	return theme.Card.Width(max(width, 20)).Render(b.String())
}
