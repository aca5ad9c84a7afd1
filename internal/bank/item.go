package bank

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ChoiceCount is the fixed number of answer choices per item.
const ChoiceCount = 5

// Letters are the answer keys in choice order.
var Letters = []string{"A", "B", "C", "D", "E"}

//go:embed seed.json
var seed []byte

// ErrNotArray is returned when an imported document is not a JSON array.
var ErrNotArray = errors.New("JSON must be an array of items")

// Item is a single multiple-choice question in the bank.
type Item struct {
	ID          string   `json:"id"`
	Stem        string   `json:"stem"`
	Choices     []string `json:"choices"`
	AnswerKey   string   `json:"answer_key"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
	Difficulty  int      `json:"difficulty"`
	References  []string `json:"references"`
	Image       *string  `json:"image"`
	Audio       *string  `json:"audio"`
}

// rawItem is the lenient shape accepted on import. Scalars may arrive as
// strings or numbers, and list fields that are not arrays read as empty.
type rawItem struct {
	ID          json.RawMessage `json:"id"`
	Stem        json.RawMessage `json:"stem"`
	Choices     json.RawMessage `json:"choices"`
	AnswerKey   json.RawMessage `json:"answer_key"`
	Explanation json.RawMessage `json:"explanation"`
	Tags        json.RawMessage `json:"tags"`
	Difficulty  json.RawMessage `json:"difficulty"`
	References  json.RawMessage `json:"references"`
	Image       json.RawMessage `json:"image"`
	Audio       json.RawMessage `json:"audio"`
}

// Seed returns the bundled default bank written on first run.
func Seed() []byte {
	out := make([]byte, len(seed))
	copy(out, seed)
	return out
}

// ValidLetter reports whether s is one of A-E.
func ValidLetter(s string) bool {
	for _, l := range Letters {
		if s == l {
			return true
		}
	}
	return false
}

// NewItem returns a blank item with a fresh id, as created from the editor.
func NewItem() Item {
	return Item{
		ID:         uuid.NewString(),
		Stem:       "New question",
		Choices:    []string{"Option A", "Option B", "Option C", "Option D", "Option E"},
		AnswerKey:  "A",
		Tags:       []string{},
		Difficulty: 1,
		References: []string{},
	}
}

// Normalize coerces an item into the canonical shape: exactly five choices,
// an answer key in A-E, difficulty in 1..5 and non-nil slices.
func Normalize(it Item) Item {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}

	choices := make([]string, ChoiceCount)
	copy(choices, it.Choices)
	it.Choices = choices

	it.AnswerKey = strings.ToUpper(strings.TrimSpace(it.AnswerKey))
	if !ValidLetter(it.AnswerKey) {
		it.AnswerKey = "A"
	}

	it.Difficulty = ClampDifficulty(it.Difficulty)

	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.References == nil {
		it.References = []string{}
	}
	if it.Image != nil && *it.Image == "" {
		it.Image = nil
	}
	if it.Audio != nil && *it.Audio == "" {
		it.Audio = nil
	}
	return it
}

// ClampDifficulty limits d to 1..5; zero or negative values become 1.
func ClampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 5 {
		return 5
	}
	return d
}

// ParseItems decodes and normalizes a JSON array of items.
func ParseItems(data []byte) ([]Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Item{}, nil
	}
	if trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var raws []rawItem
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]Item, 0, len(raws))
	for _, r := range raws {
		items = append(items, Normalize(Item{
			ID:          textValue(r.ID),
			Stem:        textValue(r.Stem),
			Choices:     listValue(r.Choices),
			AnswerKey:   textValue(r.AnswerKey),
			Explanation: textValue(r.Explanation),
			Tags:        listValue(r.Tags),
			Difficulty:  parseDifficulty(r.Difficulty),
			References:  listValue(r.References),
			Image:       optionalText(r.Image),
			Audio:       optionalText(r.Audio),
		}))
	}
	return items, nil
}

// Encode renders items as the indented JSON written to items.json.
func Encode(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.MarshalIndent(items, "", "  ")
}

// Merge overlays incoming items onto existing ones by id. Existing items keep
// their position when replaced; new ids are appended in incoming order.
func Merge(existing, incoming []Item) []Item {
	out := make([]Item, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	index := make(map[string]int, len(out))
	for i, it := range out {
		index[it.ID] = i
	}
	for _, it := range incoming {
		if i, ok := index[it.ID]; ok {
			out[i] = it
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

// Find returns the item with the given id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// AnswerKeys maps item ids to their answer letter.
func AnswerKeys(items []Item) map[string]string {
	keys := make(map[string]string, len(items))
	for _, it := range items {
		keys[it.ID] = it.AnswerKey
	}
	return keys
}

// IDs returns the item ids in bank order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Fingerprint is the lowercase hex SHA-256 of a serialized bank.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func parseDifficulty(raw json.RawMessage) int {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 1
	}
	switch d := v.(type) {
	case float64:
		return ClampDifficulty(int(d))
	case string:
		return parseDifficultyText(d)
	}
	return 1
}

func parseDifficultyText(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return ClampDifficulty(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return ClampDifficulty(int(f))
}

// textValue reads a JSON string or number as text. Anything else is "".
func textValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return ""
}

func optionalText(raw json.RawMessage) *string {
	s := textValue(raw)
	if s == "" {
		return nil
	}
	return &s
}

// listValue reads a JSON array of scalars. A non-array reads as nil.
func listValue(raw json.RawMessage) []string {
	var elems []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil {
		return nil
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		out = append(out, textValue(e))
	}
	return out
}

// SplitList splits s on sep, trimming parts and dropping empty ones.
func SplitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinList(parts []string, sep string) string {
	return strings.Join(parts, sep)
}
