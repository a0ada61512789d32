package focus

import (
	"time"

	"github.com/zeyinlabs/zeyin/internal/store"
)

// RecordCap bounds the reflection log; the oldest entry is evicted first.
const RecordCap = 50

// QuestSnapshot freezes the quest a session was tied to at save time.
type QuestSnapshot struct {
	Title   string `json:"title"`
	XP      int    `json:"xp"`
	Minutes int    `json:"minutes"`
}

// SessionRecord is one reflection log entry.
type SessionRecord struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	PresetMinutes int            `json:"presetMin"`
	SpentSeconds  int            `json:"spentSec"`
	Rating        int            `json:"rating"`
	Note          string         `json:"note"`
	Quest         *QuestSnapshot `json:"quest,omitempty"`
}

// Records loads the reflection log, newest first. Unreadable documents yield
// an empty log.
func Records(s store.Store) []SessionRecord {
	var recs []SessionRecord
	ok, err := s.Load(store.KeySessions, &recs)
	if err != nil || !ok {
		return nil
	}
	return recs
}

// AppendRecord prepends rec and truncates the log to RecordCap entries.
func AppendRecord(s store.Store, rec SessionRecord) error {
	recs := Records(s)
	recs = append([]SessionRecord{rec}, recs...)
	if len(recs) > RecordCap {
		recs = recs[:RecordCap]
	}
	return s.Save(store.KeySessions, recs)
}
