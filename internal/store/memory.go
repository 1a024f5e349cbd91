package store

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	doc     []byte
	alarmAt *time.Time
}

// MemoryStore is an in-process Store with the same per-key semantics as the
// MongoDB implementation. It backs unit tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok || rec.doc == nil {
		return nil, ErrNotFound
	}
	doc := make([]byte, len(rec.doc))
	copy(doc, rec.doc)
	return doc, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(key)
	rec.doc = make([]byte, len(doc))
	copy(rec.doc, doc)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemoryStore) SetAlarm(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(key)
	rec.alarmAt = &at
	return nil
}

func (s *MemoryStore) Alarm(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok || rec.alarmAt == nil {
		return time.Time{}, false, nil
	}
	return *rec.alarmAt, true, nil
}

func (s *MemoryStore) CancelAlarm(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok {
		rec.alarmAt = nil
		if rec.doc == nil {
			delete(s.records, key)
		}
	}
	return nil
}

func (s *MemoryStore) PendingAlarms(_ context.Context) ([]PendingAlarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []PendingAlarm
	for key, rec := range s.records {
		if rec.alarmAt != nil {
			pending = append(pending, PendingAlarm{Key: key, At: *rec.alarmAt})
		}
	}
	return pending, nil
}

// record returns the entry for key, creating it if needed. Callers hold s.mu.
func (s *MemoryStore) record(key string) *memoryRecord {
	rec, ok := s.records[key]
	if !ok {
		rec = &memoryRecord{}
		s.records[key] = rec
	}
	return rec
}
