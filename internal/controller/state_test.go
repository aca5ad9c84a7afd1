package controller

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/session"
	"github.com/abhisek/qbank/internal/store"
)

const threeItems = `[
  {"id":"q1","stem":"Heart sounds","choices":["a","b","c","d","e"],"answer_key":"B"},
  {"id":"q2","stem":"Lung fields","choices":["a","b","c","d","e"],"answer_key":"C"},
  {"id":"q3","stem":"heart murmur","choices":["a","b","c","d","e"],"answer_key":"a"}
]`

func loaded(t *testing.T) *State {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	s := New(session.WithRand(rand.New(rand.NewPCG(1, 2))), session.WithClock(clock))
	require.NoError(t, s.ApplyLoaded(bridge.StoreInfo{AutoSnapshots: true}, threeItems, "[]"))
	return s
}

func TestApplyLoaded(t *testing.T) {
	s := New()
	history := `[{"session_id":"s1","mode":"exam","summary":{"total":4,"correct":3,"percent":75}}, 42]`
	require.NoError(t, s.ApplyLoaded(bridge.StoreInfo{DataPath: "/d", AutoSnapshots: false}, threeItems, history))

	assert.Len(t, s.Items, 3)
	assert.Equal(t, "A", s.Items[2].AnswerKey)
	assert.Equal(t, bank.Fingerprint([]byte(threeItems)), s.BankHash)
	assert.False(t, s.AutoSnapshot)
	require.Len(t, s.History, 1)
	require.NotNil(t, s.LastSummary)
	assert.Equal(t, 75, s.LastSummary.Percent)
	assert.Empty(t, s.Err)
}

func TestApplyLoadedBadBank(t *testing.T) {
	s := New()
	err := s.ApplyLoaded(bridge.StoreInfo{}, `{"not":"an array"}`, "[]")
	require.Error(t, err)
	assert.Contains(t, s.Err, "Failed to load data")

	require.NoError(t, s.ApplyLoaded(bridge.StoreInfo{}, "", "garbage"))
	assert.Empty(t, s.Items)
	assert.Empty(t, s.History)
	assert.Nil(t, s.LastSummary)
}

func TestBeginSessionEmptyBank(t *testing.T) {
	s := New()
	err := s.BeginSession(session.ModePractice)
	assert.ErrorIs(t, err, session.ErrEmptyBank)
	assert.Equal(t, ViewHome, s.View)
	assert.Nil(t, s.Session)
}

func TestPracticeFlow(t *testing.T) {
	s := loaded(t)
	require.NoError(t, s.BeginSession(session.ModePractice))
	assert.Equal(t, ViewPractice, s.View)
	assert.Equal(t, 3, s.Session.Len())
	assert.Equal(t, s.BankHash, s.Session.Version)

	assert.True(t, s.Select("B"))
	assert.False(t, s.Select("Z"))
	rec, ok := s.Confirm()
	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.True(t, s.Session.CurrentResponse().Revealed)

	s.Move(1)
	s.CycleConfidence()
	s.ToggleReview()
	assert.Equal(t, 2, s.Session.CurrentResponse().Confidence)
	assert.True(t, s.Session.CurrentResponse().Reviewed)

	rec, ok = s.Finish()
	require.True(t, ok)
	assert.Equal(t, session.ModePractice, rec.Mode)
	assert.Len(t, rec.Results, 3)
	assert.Equal(t, ViewHome, s.View)
	assert.Nil(t, s.Session)

	_, ok = s.Finish()
	assert.False(t, ok)
}

func TestExamFlow(t *testing.T) {
	s := loaded(t)
	require.NoError(t, s.BeginSession(session.ModeExam))
	assert.Equal(t, ViewExam, s.View)

	for i := 0; i < s.Session.Len(); i++ {
		id := s.Session.Current()
		it, _ := bank.Find(s.Items, id)
		s.Select(it.AnswerKey)
		s.Move(1)
	}

	rec, ok := s.Confirm()
	require.True(t, ok)
	assert.Equal(t, ViewSummary, s.View)
	assert.Equal(t, session.Summary{Total: 3, Correct: 3, Percent: 100}, rec.Summary)
	require.NotNil(t, s.Session, "the summary view reads the submitted session")
	assert.Empty(t, s.Session.Misses())

	_, ok = s.Confirm()
	assert.False(t, ok)

	s.RecordSaved(*rec)
	assert.Len(t, s.History, 1)
	assert.Equal(t, 100, s.LastSummary.Percent)

	s.SetView(ViewHome)
	assert.Nil(t, s.Session)
}

func TestSetViewDropsSession(t *testing.T) {
	s := loaded(t)
	require.NoError(t, s.BeginSession(session.ModePractice))
	s.SetView(ViewPractice)
	assert.NotNil(t, s.Session)
	s.SetView(ViewEditor)
	assert.Nil(t, s.Session)
}

func TestEditor(t *testing.T) {
	s := loaded(t)

	s.SetSearch("HEART")
	filtered := s.FilteredItems()
	require.Len(t, filtered, 2)
	assert.Equal(t, "q1", filtered[0].ID)

	it := s.NewItem()
	assert.Equal(t, it.ID, s.Items[0].ID)
	assert.Equal(t, "New question", it.Stem)
	sel, ok := s.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, it.ID, sel.ID)

	it.AnswerKey = "q"
	assert.ErrorIs(t, s.UpdateItem(it), ErrInvalidAnswerKey)

	it.AnswerKey = "d"
	it.Difficulty = 9
	require.NoError(t, s.UpdateItem(it))
	got, _ := bank.Find(s.Items, it.ID)
	assert.Equal(t, "D", got.AnswerKey)
	assert.Equal(t, 5, got.Difficulty)

	assert.ErrorIs(t, s.UpdateItem(bank.Item{ID: "gone", AnswerKey: "A"}), ErrNoSuchItem)

	assert.True(t, s.AttachMedia(it.ID, store.MediaImages, "scan.png"))
	assert.True(t, s.AttachMedia(it.ID, store.MediaAudio, "beat.mp3"))
	got, _ = bank.Find(s.Items, it.ID)
	require.NotNil(t, got.Image)
	assert.Equal(t, "scan.png", *got.Image)
	assert.Equal(t, "beat.mp3", *got.Audio)
	assert.False(t, s.AttachMedia("gone", store.MediaImages, "x.png"))

	assert.True(t, s.DeleteItem(it.ID))
	assert.False(t, s.DeleteItem(it.ID))
	assert.Empty(t, s.Editor.SelectedID)
	assert.Len(t, s.Items, 3)
}

func TestItemsSaved(t *testing.T) {
	s := loaded(t)
	s.NewItem()
	raw, err := s.EncodeItems()
	require.NoError(t, err)

	var decoded []bank.Item
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Len(t, decoded, 4)

	s.ItemsSaved(raw)
	assert.Equal(t, raw, s.ItemsRaw)
	assert.Equal(t, bank.Fingerprint([]byte(raw)), s.BankHash)
}

func TestImportJSON(t *testing.T) {
	t.Run("merge", func(t *testing.T) {
		s := loaded(t)
		n, err := s.ImportJSON(`[{"id":"q2","stem":"replaced"},{"id":"q9","stem":"new"}]`, true)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, s.Items, 4)
		assert.Equal(t, "replaced", s.Items[1].Stem)
		assert.Equal(t, "q9", s.Items[3].ID)
	})

	t.Run("replace", func(t *testing.T) {
		s := loaded(t)
		_, err := s.ImportJSON(`[{"id":"only"}]`, false)
		require.NoError(t, err)
		require.Len(t, s.Items, 1)
		assert.Equal(t, "only", s.Items[0].ID)
	})

	t.Run("not an array", func(t *testing.T) {
		s := loaded(t)
		_, err := s.ImportJSON(`{"id":"x"}`, true)
		assert.ErrorIs(t, err, bank.ErrNotArray)
		assert.Len(t, s.Items, 3)
	})
}

func TestImportExportCSV(t *testing.T) {
	s := loaded(t)
	n, err := s.ImportCSV("stem,A,B,C,D,E,answer_key\nWhich?,1,2,3,4,5,e\n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, s.Items, 4)
	assert.Equal(t, "E", s.Items[3].AnswerKey)

	out, err := s.ExportCSV()
	require.NoError(t, err)
	assert.Contains(t, out, "Which?")

	js, err := s.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"answer_key": "E"`)
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "Exam Summary", ViewSummary.String())
	assert.Equal(t, "View(99)", View(99).String())
}
