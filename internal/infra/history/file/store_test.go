package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "analysis_history.json"))
}

func TestLoad_MissingFile(t *testing.T) {
	s := newStore(t)

	log, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Empty(t, log)
}

func TestAppend_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := analysis.Record{Timestamp: "2025-03-01 09:00:00", Result: "지저분한 방", Confidence: 61.23456789}
	r := analysis.Record{ID: "b7f6c0de", Timestamp: "2025-03-01 09:00:05", Result: "깨끗한 방", Confidence: 97.81234}
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, r))

	log, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, first, log[0])
	assert.Equal(t, r, log[len(log)-1])
}

func TestLoad_Idempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, analysis.Record{Timestamp: "2025-03-01 09:00:00", Result: "a", Confidence: float64(i)}))
	}

	a, err := s.Load(ctx)
	require.NoError(t, err)
	b, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoad_LegacyFile(t *testing.T) {
	s := newStore(t)
	legacy := `[{"timestamp": "2025-01-05 21:14:03", "result": "깨끗한 방", "confidence": 99.6}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))

	log, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "깨끗한 방", log[0].Result)
	assert.Empty(t, log[0].ID)
}

func TestLoad_ASCIIEscapedFile(t *testing.T) {
	s := newStore(t)
	escaped := `[{"timestamp": "2025-01-05 21:14:03", "result": "\uae68\ub057\ud55c \ubc29", "confidence": 99.6}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(escaped), 0o644))

	log, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "깨끗한 방", log[0].Result)
}

func TestLoad_EmptyArray(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("[]"), 0o644))

	log, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Empty(t, log)

	require.NoError(t, s.Append(context.Background(), analysis.Record{Timestamp: "2025-03-01 09:00:00", Result: "a"}))
	log, err = s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestLoad_ZeroByteFileIsCorrupt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o644))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, analysis.ErrCorruptHistory)
}

func TestLoad_Corrupt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"timestamp": "2025-01-05`), 0o644))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrCorruptHistory)

	err = s.Append(context.Background(), analysis.Record{Result: "x"})
	assert.ErrorIs(t, err, analysis.ErrCorruptHistory)
}

func TestAppend_HumanReadable(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append(context.Background(), analysis.Record{Timestamp: "2025-03-01 09:00:00", Result: "깨끗한 방", Confidence: 90}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "깨끗한 방")
	assert.Contains(t, string(data), "\n  ")
	assert.NotContains(t, string(data), `"id"`)
}

func TestAppend_ConcurrentInProcess(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, analysis.Record{ID: fmt.Sprint(i), Timestamp: "2025-03-01 09:00:00", Result: "a"}))
		}(i)
	}
	wg.Wait()

	log, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 20)
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newStore(t).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
