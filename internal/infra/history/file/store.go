// Package file stores the analysis log as a single human-readable JSON array.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// DefaultPath matches the file name earlier deployments wrote.
const DefaultPath = "analysis_history.json"

// Store implements analysis.HistoryStore on a flat file.
// Append is read-modify-write of the whole file; mu serializes it within
// this process only.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by path. The file is created on first Append.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path of the backing file
func (s *Store) Path() string { return s.path }

// Load reads the whole log. A missing file is an empty log.
func (s *Store) Load(ctx context.Context) ([]analysis.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read()
}

// Append adds r to the end of the log and rewrites the file.
func (s *Store) Append(ctx context.Context, r analysis.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.read()
	if err != nil {
		return err
	}
	log = append(log, r)

	data, err := sonic.ConfigDefault.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Check implements middleware.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *Store) read() ([]analysis.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []analysis.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", analysis.ErrCorruptHistory, s.path)
	}

	var log []analysis.Record
	if err := sonic.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", analysis.ErrCorruptHistory, s.path, err)
	}
	if log == nil {
		log = []analysis.Record{}
	}
	return log, nil
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
