package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	in := doc{Name: "zeyin", Count: 3, Tags: []string{"a", "b"}}
	require.NoError(t, m.Save("k", in))

	var out doc
	ok, err := m.Load("k", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()
	var out doc
	ok, err := m.Load("absent", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, out)
}

func TestMemoryCorruptDocumentReportsAbsent(t *testing.T) {
	m := NewMemory()
	m.Corrupt("k")
	var out doc
	ok, err := m.Load("k", &out)
	require.NoError(t, err)
	assert.False(t, ok, "parse failures are swallowed, caller reseeds")
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Save("k", doc{Name: "x"}))
	m.Delete("k")
	var out doc
	ok, _ := m.Load("k", &out)
	assert.False(t, ok)
}
