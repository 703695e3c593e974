package session

import (
	"context"
	"sync"
)

type memoryEntry struct {
	state   string
	scratch Scratch
	busy    bool
}

// MemoryStore keeps all sessions in a mutex-guarded map. It is the
// default backend: the bot is single-process and the store is the single
// consistency domain, so a process-local map satisfies the contract.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*memoryEntry)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) entry(userID int64) *memoryEntry {
	e, ok := m.sessions[userID]
	if !ok {
		e = &memoryEntry{state: StateMainMenu}
		m.sessions[userID] = e
	}
	return e
}

func (m *MemoryStore) State(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry(userID).state, nil
}

func (m *MemoryStore) SetState(_ context.Context, userID int64, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).state = state
	return nil
}

func (m *MemoryStore) Scratch(_ context.Context, userID int64) (Scratch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry(userID).scratch, nil
}

func (m *MemoryStore) SetScratch(_ context.Context, userID int64, s Scratch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).scratch = s
	return nil
}

func (m *MemoryStore) ClearScratch(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).scratch = Scratch{}
	return nil
}

func (m *MemoryStore) TryAcquire(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(userID)
	if e.busy {
		return false, nil
	}
	e.busy = true
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(userID).busy = false
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(userID)
	e.state = StateMainMenu
	e.scratch = Scratch{}
	return nil
}
