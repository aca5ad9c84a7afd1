package controller

import (
	"strings"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/store"
)

// FilteredItems returns the items whose stem contains the editor search,
// ignoring case.
func (s *State) FilteredItems() []bank.Item {
	q := strings.ToLower(s.Editor.Search)
	out := make([]bank.Item, 0, len(s.Items))
	for _, it := range s.Items {
		if strings.Contains(strings.ToLower(it.Stem), q) {
			out = append(out, it)
		}
	}
	return out
}

// SetSearch replaces the editor filter.
func (s *State) SetSearch(q string) {
	s.Editor.Search = q
}

// SelectItem focuses an item in the editor.
func (s *State) SelectItem(id string) {
	s.Editor.SelectedID = id
}

// SelectedItem returns the focused item.
func (s *State) SelectedItem() (bank.Item, bool) {
	if s.Editor.SelectedID == "" {
		return bank.Item{}, false
	}
	return bank.Find(s.Items, s.Editor.SelectedID)
}

// NewItem prepends a blank item and selects it.
func (s *State) NewItem() bank.Item {
	it := bank.NewItem()
	s.Items = append([]bank.Item{it}, s.Items...)
	s.Editor.SelectedID = it.ID
	return it
}

// UpdateItem replaces the item with the same id. The answer key must be A-E
// (case-insensitive); other fields are normalized.
func (s *State) UpdateItem(it bank.Item) error {
	key := strings.ToUpper(strings.TrimSpace(it.AnswerKey))
	if !bank.ValidLetter(key) {
		return ErrInvalidAnswerKey
	}
	it.AnswerKey = key
	it = bank.Normalize(it)
	for i := range s.Items {
		if s.Items[i].ID == it.ID {
			s.Items[i] = it
			return nil
		}
	}
	return ErrNoSuchItem
}

// DeleteItem removes an item and clears the selection.
func (s *State) DeleteItem(id string) bool {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.Editor.SelectedID = ""
			return true
		}
	}
	return false
}

// AttachMedia sets the image or audio of an item to a stored media name.
func (s *State) AttachMedia(id string, kind store.MediaKind, name string) bool {
	for i := range s.Items {
		if s.Items[i].ID != id {
			continue
		}
		n := name
		switch kind {
		case store.MediaImages:
			s.Items[i].Image = &n
		case store.MediaAudio:
			s.Items[i].Audio = &n
		default:
			return false
		}
		return true
	}
	return false
}

// EncodeItems renders the bank as written to items.json.
func (s *State) EncodeItems() (string, error) {
	data, err := bank.Encode(s.Items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ItemsSaved is applied once items.json has been written with raw.
func (s *State) ItemsSaved(raw string) {
	s.ItemsRaw = raw
	s.BankHash = bank.Fingerprint([]byte(raw))
}
