package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps sessions in process memory. It is meant for tests and
// single-instance development runs.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]Record
	locks   map[string]struct{}
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]Record),
		locks:   make(map[string]struct{}),
	}
}

func (b *MemoryBackend) Scope(sessionID string) Store {
	return &memoryStore{backend: b, id: sessionID}
}

// Put seeds a raw record, bypassing Save's completeness check.
func (b *MemoryBackend) Put(sessionID string, rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[sessionID] = rec
}

func (b *MemoryBackend) Get(sessionID string) (Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[sessionID]
	return rec, ok
}

type memoryStore struct {
	backend *MemoryBackend
	id      string
}

func (s *memoryStore) Load(context.Context) (Record, error) {
	rec, _ := s.backend.Get(s.id)
	return rec, nil
}

func (s *memoryStore) Save(_ context.Context, rec Record) error {
	if !rec.Complete() {
		return ErrIncompleteRecord
	}
	s.backend.Put(s.id, rec)
	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.records, s.id)
	return nil
}

func (s *memoryStore) AcquireSubmit(context.Context) (func(), error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	if _, held := s.backend.locks[s.id]; held {
		return nil, ErrLocked
	}
	s.backend.locks[s.id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.backend.mu.Lock()
			delete(s.backend.locks, s.id)
			s.backend.mu.Unlock()
		})
	}, nil
}
