package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bank"
	sess "github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

var confidenceNames = map[int]string{1: "Low", 2: "Medium", 3: "High"}

func (s *SessionScreen) View(width, height int) string {
	cur := s.env.State.Session
	if cur == nil || cur.Len() == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  No session in progress.")
	}

	inner := width - 4
	resp := cur.CurrentResponse()
	var b strings.Builder

	// Position and flags.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", cur.Index+1, cur.Len()))

	flags := fmt.Sprintf("Confidence: %s", confidenceNames[resp.Confidence])
	if resp.Reviewed {
		flags += "   " + theme.Flagged.Render("● Review")
	}
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).Render(flags)

	infoLine := infoLeft
	if pad := inner - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight); pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	// height is the content area; add back the header and footer.
	if !layout.IsCompactHeight(height + 8) {
		bar := components.NewProgressBar("  Answered", cur.Answered(), cur.Len(), inner)
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(inner, 0))))
	b.WriteString("\n\n")

	item, ok := bank.Find(s.env.State.Items, cur.Current())
	if !ok {
		b.WriteString(theme.Hint.Render("  This question is no longer in the bank. It will be graded incorrect."))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(inner).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(item.Stem))
	b.WriteString("\n")
	b.WriteString(s.renderMedia(item))
	b.WriteString("\n")

	revealed := cur.Mode == sess.ModePractice && resp.Revealed
	choices := components.ChoiceList{
		Choices:  item.Choices,
		Selected: resp.Selected,
		Key:      item.AnswerKey,
		Revealed: revealed,
		Width:    inner,
	}
	b.WriteString(choices.View())

	if revealed {
		b.WriteString("\n")
		b.WriteString(renderFeedback(resp, item, inner))
	}
	return b.String()
}

func (s *SessionScreen) renderMedia(item bank.Item) string {
	root := s.env.State.Info.DataPath
	var lines []string
	if item.Image != nil {
		lines = append(lines, "  Image: "+filepath.Join(root, store.MediaDir, string(store.MediaImages), *item.Image))
	}
	if item.Audio != nil {
		lines = append(lines, "  Audio: "+filepath.Join(root, store.MediaDir, string(store.MediaAudio), *item.Audio))
	}
	if len(lines) == 0 {
		return ""
	}
	return theme.Hint.Render(strings.Join(lines, "\n")) + "\n"
}

func renderFeedback(resp sess.Response, item bank.Item, width int) string {
	var b strings.Builder
	if resp.Correct != nil && *resp.Correct {
		b.WriteString(theme.Correct.Render("  Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("  Incorrect. Answer: %s", item.AnswerKey)))
	}
	b.WriteString("\n")
	if item.Explanation != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Foreground(theme.Text).Render(item.Explanation))
		b.WriteString("\n")
	}
	if len(item.References) > 0 {
		b.WriteString(theme.Hint.Render("  References: " + strings.Join(item.References, "; ")))
		b.WriteString("\n")
	}
	return b.String()
}
