package controller

import (
	"strings"

	"github.com/abhisek/qbank/internal/bank"
)

// Suggested export file names.
const (
	ExportJSONName = "qbank_items.json"
	ExportCSVName  = "qbank_items.csv"
)

// ImportJSON applies an imported JSON bank. With merge, items overlay the
// current bank by id; otherwise they replace it. It returns the number of
// items read.
func (s *State) ImportJSON(content string, merge bool) (int, error) {
	incoming, err := bank.ParseItems([]byte(content))
	if err != nil {
		return 0, err
	}
	if merge {
		s.Items = bank.Merge(s.Items, incoming)
	} else {
		s.Items = incoming
	}
	s.Editor.SelectedID = ""
	return len(incoming), nil
}

// ImportCSV appends the rows of a CSV file as new items.
func (s *State) ImportCSV(content string) (int, error) {
	incoming, err := bank.ParseCSV(strings.NewReader(content))
	if err != nil {
		return 0, err
	}
	s.Items = append(s.Items, incoming...)
	return len(incoming), nil
}

// ExportJSON renders the bank for exportFile.
func (s *State) ExportJSON() (string, error) {
	return s.EncodeItems()
}

// ExportCSV renders the bank as CSV for exportFile.
func (s *State) ExportCSV() (string, error) {
	return bank.ToCSV(s.Items)
}
