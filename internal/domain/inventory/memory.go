package inventory

import (
	"context"
	"sync"
)

// MemorySink журнал в памяти процесса (dev-режим и тесты).
type MemorySink struct {
	mu   sync.Mutex
	rows Table
}

func NewMemorySink(seed ...Record) *MemorySink {
	return &MemorySink{rows: append(Table(nil), seed...)}
}

func (s *MemorySink) Append(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, records...)
	return nil
}

func (s *MemorySink) ReadAll(_ context.Context) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(Table{}, s.rows...), nil
}
