// Package memory keeps the analysis log in process memory (tests, ephemeral demos).
package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

type Store struct {
	mu  sync.RWMutex
	log []analysis.Record
}

func New(seed ...analysis.Record) *Store {
	return &Store{log: append([]analysis.Record(nil), seed...)}
}

func (s *Store) Load(ctx context.Context) ([]analysis.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]analysis.Record, len(s.log))
	copy(out, s.log)
	return out, nil
}

func (s *Store) Append(ctx context.Context, r analysis.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.log = append(s.log, r)
	s.mu.Unlock()
	return nil
}

func (s *Store) Check(ctx context.Context) error { return ctx.Err() }
