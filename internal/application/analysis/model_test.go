package analysis

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

func TestModelHandle_LoadsOnce(t *testing.T) {
	var calls int32
	h := NewModelHandle(loaderFor(&fakeModel{probs: []float32{0.9, 0.1}}, &calls))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Predict(context.Background(), domain.Sample{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestModelHandle_LazyLoad(t *testing.T) {
	var calls int32
	h := NewModelHandle(loaderFor(&fakeModel{}, &calls))
	assert.Equal(t, int32(0), calls)

	labels, err := h.Labels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roomLabels, labels)
	assert.Equal(t, int32(1), calls)
}

func TestModelHandle_LoadError(t *testing.T) {
	boom := errors.New("no such file")
	h := NewModelHandle(func(ctx context.Context) (domain.Model, []domain.Label, error) {
		return nil, nil, boom
	})
	_, err := h.Predict(context.Background(), domain.Sample{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, h.Check(context.Background()), boom)
}

func TestModelHandle_Reload(t *testing.T) {
	first := &fakeModel{probs: []float32{0.9, 0.1}}
	second := &fakeModel{probs: []float32{0.1, 0.9}}
	current := domain.Model(first)
	h := NewModelHandle(func(ctx context.Context) (domain.Model, []domain.Label, error) {
		return current, roomLabels, nil
	})

	p, err := h.Predict(context.Background(), domain.Sample{})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index)

	current = second
	require.NoError(t, h.Reload(context.Background()))
	assert.True(t, first.closed.Load(), "previous model released")

	p, err = h.Predict(context.Background(), domain.Sample{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index)
}

func TestModelHandle_ReloadFailureKeepsCurrent(t *testing.T) {
	m := &fakeModel{probs: []float32{0.9, 0.1}}
	fail := false
	h := NewModelHandle(func(ctx context.Context) (domain.Model, []domain.Label, error) {
		if fail {
			return nil, nil, errors.New("half-written file")
		}
		return m, roomLabels, nil
	})
	require.NoError(t, h.Check(context.Background()))

	fail = true
	assert.Error(t, h.Reload(context.Background()))
	_, err := h.Predict(context.Background(), domain.Sample{})
	assert.NoError(t, err)
}

func TestModelHandle_Close(t *testing.T) {
	m := &fakeModel{probs: []float32{0.9, 0.1}}
	h := NewModelHandle(loaderFor(m, nil))
	require.NoError(t, h.Check(context.Background()))

	require.NoError(t, h.Close())
	assert.True(t, m.closed.Load())
	require.NoError(t, h.Close())

	_, err := h.Predict(context.Background(), domain.Sample{})
	assert.ErrorIs(t, err, domain.ErrModelClosed)
	assert.ErrorIs(t, h.Reload(context.Background()), domain.ErrModelClosed)
}

func TestModelHandle_ReloadAfterCloseLogsCloseError(t *testing.T) {
	m := &fakeModel{probs: []float32{0.9, 0.1}, closeErr: errors.New("session busy")}
	h := NewModelHandle(loaderFor(m, nil))
	require.NoError(t, h.Check(context.Background()))
	require.Error(t, h.Close())

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	assert.ErrorIs(t, h.Reload(context.Background()), domain.ErrModelClosed)
	assert.Contains(t, buf.String(), "model close_reloaded error=session busy")
}
