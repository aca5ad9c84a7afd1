package editor

import (
	"errors"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// Form field order.
const (
	fieldStem = iota
	fieldChoiceA
	fieldChoiceB
	fieldChoiceC
	fieldChoiceD
	fieldChoiceE
	fieldKey
	fieldExplanation
	fieldTags
	fieldDifficulty
	fieldReferences
	fieldCount
)

var errDifficulty = errors.New("difficulty must be a number from 1 to 5")

// form edits one item. Media references are carried over untouched.
type form struct {
	id     string
	image  *string
	audio  *string
	inputs []components.TextInput
	focus  int
}

func newForm(it bank.Item) (form, tea.Cmd) {
	f := form{
		id:     it.ID,
		image:  it.Image,
		audio:  it.Audio,
		inputs: make([]components.TextInput, fieldCount),
	}

	f.inputs[fieldStem] = components.NewTextInput("Stem", "Question text", false, 0)
	f.inputs[fieldStem].SetValue(it.Stem)
	for i, letter := range bank.Letters {
		in := components.NewTextInput("Choice "+letter, "", false, 0)
		if i < len(it.Choices) {
			in.SetValue(it.Choices[i])
		}
		f.inputs[fieldChoiceA+i] = in
	}
	f.inputs[fieldKey] = components.NewTextInput("Answer key (A-E)", "A", false, 1)
	f.inputs[fieldKey].SetValue(it.AnswerKey)
	f.inputs[fieldExplanation] = components.NewTextInput("Explanation", "", false, 0)
	f.inputs[fieldExplanation].SetValue(it.Explanation)
	f.inputs[fieldTags] = components.NewTextInput("Tags (comma separated)", "", false, 0)
	f.inputs[fieldTags].SetValue(strings.Join(it.Tags, ", "))
	f.inputs[fieldDifficulty] = components.NewTextInput("Difficulty (1-5)", "1", true, 1)
	f.inputs[fieldDifficulty].SetValue(strconv.Itoa(it.Difficulty))
	f.inputs[fieldReferences] = components.NewTextInput("References (semicolon separated)", "", false, 0)
	f.inputs[fieldReferences].SetValue(strings.Join(it.References, "; "))

	return f, f.inputs[fieldStem].Focus()
}

// move shifts focus by step, wrapping.
func (f *form) move(step int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = ((f.focus+step)%fieldCount + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// item builds the edited item. The answer key is validated by the caller.
func (f form) item() (bank.Item, error) {
	choices := make([]string, bank.ChoiceCount)
	for i := range choices {
		choices[i] = f.inputs[fieldChoiceA+i].Value()
	}

	difficulty := 1
	if v := strings.TrimSpace(f.inputs[fieldDifficulty].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return bank.Item{}, errDifficulty
		}
		difficulty = n
	}

	return bank.Item{
		ID:          f.id,
		Stem:        f.inputs[fieldStem].Value(),
		Choices:     choices,
		AnswerKey:   f.inputs[fieldKey].Value(),
		Explanation: f.inputs[fieldExplanation].Value(),
		Tags:        bank.SplitList(f.inputs[fieldTags].Value(), ","),
		Difficulty:  difficulty,
		References:  bank.SplitList(f.inputs[fieldReferences].Value(), ";"),
		Image:       f.image,
		Audio:       f.audio,
	}, nil
}

func (f form) view(width, height int) string {
	var b strings.Builder
	for i := range f.inputs {
		in := f.inputs[i]
		in.SetWidth(width - 6)
		b.WriteString(in.View())
		b.WriteString("\n")
		if height >= 2*fieldCount+4 {
			b.WriteString("\n")
		}
	}
	if f.image != nil {
		b.WriteString(theme.Hint.Render("Image: " + *f.image))
		b.WriteString("\n")
	}
	if f.audio != nil {
		b.WriteString(theme.Hint.Render("Audio: " + *f.audio))
		b.WriteString("\n")
	}
	return b.String()
}
