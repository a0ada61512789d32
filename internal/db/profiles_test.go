package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeyinlabs/zeyin/internal/profile"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(t.TempDir()))
	t.Cleanup(Close)
}

func TestGetProfileNotFound(t *testing.T) {
	initTestDB(t)
	_, err := GetProfile("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertThenGet(t *testing.T) {
	initTestDB(t)
	p := profile.Profile{ID: "u1", Email: "mom@example.com", Name: "Mom", Role: profile.RoleParent}
	require.NoError(t, UpsertProfile(p))

	got, err := GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	// Upsert overwrites in place.
	p.Name = "Mother"
	p.Role = profile.RoleRelative
	require.NoError(t, UpsertProfile(p))
	got, err = GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "Mother", got.Name)
	assert.Equal(t, profile.RoleRelative, got.Role)
}

func TestUpsertNormalizesRole(t *testing.T) {
	initTestDB(t)
	require.NoError(t, UpsertProfile(profile.Profile{ID: "u2", Email: "x@example.com", Role: profile.Role("Alien")}))
	got, err := GetProfile("u2")
	require.NoError(t, err)
	assert.Equal(t, profile.DefaultRole, got.Role)
}
