package store

import (
	"encoding/json"
	"sync"
)

// Memory is a Store backed by a map. Writes marshal through JSON so documents
// round-trip exactly the way they would through browser storage.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(key string, into any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		// Corrupt document: report absent, callers reseed.
		return false, nil
	}
	return true, nil
}

func (m *Memory) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
}

// Corrupt plants an undecodable document under key. Test helper.
func (m *Memory) Corrupt(key string) {
	m.mu.Lock()
	m.docs[key] = []byte("{not json")
	m.mu.Unlock()
}
