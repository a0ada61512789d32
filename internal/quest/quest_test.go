package quest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyinlabs/zeyin/internal/store"
)

func TestCatalogShape(t *testing.T) {
	for _, q := range Catalog() {
		assert.NotEmpty(t, q.Title)
		assert.Positive(t, q.Minutes)
		assert.GreaterOrEqual(t, q.XP, 0)
		assert.NotEmpty(t, q.Steps)
	}
}

func TestActiveQuestReplaceAndClear(t *testing.T) {
	st := store.NewMemory()
	assert.Nil(t, LoadActive(st))

	require.NoError(t, SetActive(st, Catalog()[0]))
	got := LoadActive(st)
	require.NotNil(t, got)
	assert.Equal(t, Catalog()[0], *got)

	// Selecting another quest replaces, never merges.
	require.NoError(t, SetActive(st, Catalog()[1]))
	got = LoadActive(st)
	require.NotNil(t, got)
	assert.Equal(t, Catalog()[1], *got)

	ClearActive(st)
	assert.Nil(t, LoadActive(st))
}

func TestLoadActiveRejectsUnusableDocument(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Save(store.KeyActiveQuest, ActiveQuest{Title: "broken", Minutes: 0}))
	assert.Nil(t, LoadActive(st), "non-positive minutes cannot drive a timer")

	m := store.NewMemory()
	m.Corrupt(store.KeyActiveQuest)
	assert.Nil(t, LoadActive(m))
}

func TestPickMicroCoversCatalog(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[PickMicro(rng).ID] = true
	}
	assert.Len(t, seen, len(Micros()), "uniform draw should reach every prompt")
}
