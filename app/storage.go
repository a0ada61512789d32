package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/store"
)

// browserStore adapts go-app's local storage to store.Store. An undecodable
// document reports absent so callers fall back to their defaults.
type browserStore struct {
	s app.BrowserStorage
}

func newBrowserStore(ctx app.Context) store.Store {
	return &browserStore{s: ctx.LocalStorage()}
}

func (b *browserStore) Load(key string, into any) (bool, error) {
	if !b.s.Contains(key) {
		return false, nil
	}
	if err := b.s.Get(key, into); err != nil {
		return false, nil
	}
	return true, nil
}

func (b *browserStore) Save(key string, v any) error {
	return b.s.Set(key, v)
}

func (b *browserStore) Delete(key string) {
	b.s.Del(key)
}
