package bank

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CSVHeader is the column order used for CSV export. Import maps columns by
// header name, so any order is accepted there.
var CSVHeader = []string{
	"stem", "A", "B", "C", "D", "E",
	"answer_key", "explanation", "tags", "difficulty", "references",
}

// ParseCSV reads items from CSV text whose first non-empty line is a header.
// Every row becomes a new item with a fresh id and no media attached.
func ParseCSV(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var header []string
	items := []Item{}
	line := 0
	for {
		line++
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if blankRecord(rec) {
			continue
		}
		if header == nil {
			header = trimAll(rec)
			continue
		}
		items = append(items, rowToItem(header, trimAll(rec)))
	}
	return items, nil
}

// ToCSV renders items in CSVHeader column order. Tags are joined with ", "
// and references with "; " so that ParseCSV splits them back.
func ToCSV(items []Item) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		it = Normalize(it)
		row := make([]string, 0, len(CSVHeader))
		row = append(row, it.Stem)
		row = append(row, it.Choices...)
		row = append(row,
			it.AnswerKey,
			it.Explanation,
			joinList(it.Tags, ", "),
			strconv.Itoa(it.Difficulty),
			joinList(it.References, "; "),
		)
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", it.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

// rowToItem maps one header-keyed row onto a new item. Missing cells read as
// empty strings.
func rowToItem(header, values []string) Item {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(values) {
			row[h] = values[i]
		} else {
			row[h] = ""
		}
	}

	choices := make([]string, ChoiceCount)
	for i, l := range Letters {
		choices[i] = row[l]
	}

	return Normalize(Item{
		ID:          uuid.NewString(),
		Stem:        row["stem"],
		Choices:     choices,
		AnswerKey:   row["answer_key"],
		Explanation: row["explanation"],
		Tags:        SplitList(row["tags"], ","),
		Difficulty:  parseDifficultyText(row["difficulty"]),
		References:  SplitList(row["references"], ";"),
	})
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
