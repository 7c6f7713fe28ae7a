package analysis

import (
	"context"
	"fmt"
	"log"
	"sync"

	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// Loader opens a classifier and its label list.
type Loader func(ctx context.Context) (domain.Model, []domain.Label, error)

// ModelHandle is the process-wide classifier. It is loaded once on first use
// and shared by all requests; Reload swaps it, Close releases it.
type ModelHandle struct {
	load Loader

	mu     sync.RWMutex
	model  domain.Model
	labels []domain.Label
	closed bool
}

func NewModelHandle(load Loader) *ModelHandle {
	return &ModelHandle{load: load}
}

// ensure loads the model if nothing is loaded yet.
func (h *ModelHandle) ensure(ctx context.Context) error {
	h.mu.RLock()
	ready, closed := h.model != nil, h.closed
	h.mu.RUnlock()
	if closed {
		return domain.ErrModelClosed
	}
	if ready {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return domain.ErrModelClosed
	}
	if h.model != nil {
		return nil
	}
	m, labels, err := h.load(ctx)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	h.model, h.labels = m, labels
	log.Printf("model loaded labels=%d", len(labels))
	return nil
}

// Predict runs inference and picks the top label.
func (h *ModelHandle) Predict(ctx context.Context, s domain.Sample) (domain.Prediction, error) {
	if err := h.ensure(ctx); err != nil {
		return domain.Prediction{}, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed || h.model == nil {
		return domain.Prediction{}, domain.ErrModelClosed
	}
	probs, err := h.model.Predict(ctx, s)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict: %w", err)
	}
	return domain.Select(probs, h.labels)
}

// Labels returns a copy of the loaded label list.
func (h *ModelHandle) Labels(ctx context.Context) ([]domain.Label, error) {
	if err := h.ensure(ctx); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Label(nil), h.labels...), nil
}

// Reload loads a fresh model and swaps it in. On failure the current model stays.
func (h *ModelHandle) Reload(ctx context.Context) error {
	m, labels, err := h.load(ctx)
	if err != nil {
		return fmt.Errorf("reload model: %w", err)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		if err := m.Close(); err != nil {
			log.Printf("model close_reloaded error=%v", err)
		}
		return domain.ErrModelClosed
	}
	old := h.model
	h.model, h.labels = m, labels
	h.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Printf("model close_previous error=%v", err)
		}
	}
	log.Printf("model reloaded labels=%d", len(labels))
	return nil
}

// Close releases the model. Later calls return ErrModelClosed.
func (h *ModelHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.model == nil {
		return nil
	}
	err := h.model.Close()
	h.model, h.labels = nil, nil
	return err
}

// Check implements middleware.HealthChecker; it forces the lazy load.
func (h *ModelHandle) Check(ctx context.Context) error {
	return h.ensure(ctx)
}
