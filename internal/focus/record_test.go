package focus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyinlabs/zeyin/internal/store"
)

func TestRecordLogCapEvictsOldest(t *testing.T) {
	st := store.NewMemory()
	for i := 0; i < RecordCap+3; i++ {
		rec := SessionRecord{
			ID:            fmt.Sprintf("rec-%d", i),
			CreatedAt:     time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
			PresetMinutes: 10,
			Rating:        3,
		}
		require.NoError(t, AppendRecord(st, rec))
	}

	recs := Records(st)
	require.Len(t, recs, RecordCap)
	assert.Equal(t, fmt.Sprintf("rec-%d", RecordCap+2), recs[0].ID, "newest first")
	assert.Equal(t, "rec-3", recs[RecordCap-1].ID, "oldest three evicted")
}

func TestRecordRoundTrip(t *testing.T) {
	st := store.NewMemory()
	rec := SessionRecord{
		ID:            "r1",
		CreatedAt:     time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		PresetMinutes: 25,
		SpentSeconds:  1500,
		Rating:        5,
		Note:          "deep work",
		Quest:         &QuestSnapshot{Title: "Pomodoro challenge", XP: 30, Minutes: 25},
	}
	require.NoError(t, AppendRecord(st, rec))

	recs := Records(st)
	require.Len(t, recs, 1)
	assert.Equal(t, rec, recs[0])
}

func TestRecordsFallBackToEmptyOnCorruptDocument(t *testing.T) {
	st := store.NewMemory()
	st.Corrupt(store.KeySessions)
	assert.Empty(t, Records(st))

	// A corrupt log is replaced, not fatal.
	require.NoError(t, AppendRecord(st, SessionRecord{ID: "r1"}))
	assert.Len(t, Records(st), 1)
}
