// Package store holds the in-memory answer set for one active session: a map
// from question identifier to its single answer record. Pure data, no I/O.
package store

import (
	"sync"

	"github.com/linguaflow/delivery-client/internal/models"
)

type AnswerStore struct {
	mu      sync.RWMutex
	records map[string]*models.AnswerRecord
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		records: make(map[string]*models.AnswerRecord),
	}
}

// Put stores the record for its question, replacing any previous record.
// Writing twice overwrites, never appends; multi-select accumulation happens
// inside the record before it is put back.
func (s *AnswerStore) Put(record *models.AnswerRecord) {
	if record == nil || record.QuestionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.QuestionID] = record
}

// Get returns a copy of the stored record, so callers cannot mutate the
// store without going through Put.
func (s *AnswerStore) Get(questionID string) (models.AnswerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[questionID]
	if !ok {
		return models.AnswerRecord{}, false
	}
	return *r, true
}

func (s *AnswerStore) Delete(questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, questionID)
}

func (s *AnswerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a snapshot of every record keyed by question identifier.
func (s *AnswerStore) All() map[string]models.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.AnswerRecord, len(s.records))
	for id, r := range s.records {
		out[id] = *r
	}
	return out
}

func (s *AnswerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*models.AnswerRecord)
}
