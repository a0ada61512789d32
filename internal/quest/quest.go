// Package quest holds the gamified quest catalog, the micro-quest prompts
// injected during focus sessions, and the single active quest bound to the
// next session.
package quest

import (
	"math/rand"

	"github.com/zeyinlabs/zeyin/internal/store"
)

// ActiveQuest is the one in-progress quest, if any. Selecting a quest from the
// catalog replaces it wholesale; it is cleared when a session tied to it
// completes and XP is settled, or explicitly by the user.
type ActiveQuest struct {
	Title   string   `json:"title"`
	Level   string   `json:"level"`
	Minutes int      `json:"minutes"`
	XP      int      `json:"xp"`
	Steps   []string `json:"steps"`
}

// Micro is a short mindfulness prompt shown mid-session.
type Micro struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

var micros = []Micro{
	{ID: "breath", Title: "10 second breath", Desc: "Inhale 4s, exhale 6s (one cycle)."},
	{ID: "posture", Title: "Posture", Desc: "Straighten your back, drop your shoulders."},
	{ID: "reset", Title: "Reset", Desc: "Remove one distraction (phone or stray tab)."},
	{ID: "goal", Title: "One goal", Desc: "Tell yourself: what am I finishing in these minutes?"},
	{ID: "eyes", Title: "Eyes", Desc: "20-20-20: look into the distance for 20 seconds."},
	{ID: "micro", Title: "Micro step", Desc: "Do the smallest possible next step (30 seconds)."},
}

// Micros returns the micro-quest prompt set.
func Micros() []Micro {
	return micros
}

// PickMicro draws a prompt uniformly at random.
func PickMicro(rng *rand.Rand) Micro {
	if rng == nil {
		return micros[rand.Intn(len(micros))]
	}
	return micros[rng.Intn(len(micros))]
}

var catalog = []ActiveQuest{
	{
		Title:   "Focus warm-up",
		Level:   "Easy",
		Minutes: 5,
		XP:      10,
		Steps: []string{
			"Put the phone away (do-not-disturb on).",
			"Open a single task, only one.",
			"Start the timer and work without switching.",
		},
	},
	{
		Title:   "Pomodoro challenge",
		Level:   "Medium",
		Minutes: 25,
		XP:      30,
		Steps: []string{
			"Name the goal: \"5 problems / 1 page / 10 examples\".",
			"25 minutes without switching.",
			"At the end, note the progress and what got in the way.",
		},
	},
	{
		Title:   "Anti-procrastination",
		Level:   "Easy",
		Minutes: 10,
		XP:      15,
		Steps: []string{
			"Write down one small next step.",
			"Do it in 10 minutes, imperfectly.",
			"If it flows, keep going for 5 more.",
		},
	},
}

// Catalog returns the seeded quest list.
func Catalog() []ActiveQuest {
	return catalog
}

// LoadActive reads the stored active quest. Returns nil when none is set or
// the stored document is unusable (non-positive minutes included).
func LoadActive(s store.Store) *ActiveQuest {
	var q ActiveQuest
	ok, err := s.Load(store.KeyActiveQuest, &q)
	if err != nil || !ok {
		return nil
	}
	if q.Minutes <= 0 {
		return nil
	}
	return &q
}

// SetActive replaces the active quest.
func SetActive(s store.Store, q ActiveQuest) error {
	return s.Save(store.KeyActiveQuest, q)
}

// ClearActive removes the active quest.
func ClearActive(s store.Store) {
	s.Delete(store.KeyActiveQuest)
}
