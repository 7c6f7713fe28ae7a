package analysis

import (
	"context"
	"io"
)

// HistoryStore port (append-only analysis log)
type HistoryStore interface {
	// Load returns the full log in insertion order; empty when nothing was stored yet.
	Load(ctx context.Context) ([]Record, error)
	Append(ctx context.Context, r Record) error
}

// Model port: a loaded classifier returning one probability per label.
type Model interface {
	Predict(ctx context.Context, s Sample) ([]float32, error)
	Close() error
}

// Preprocessor turns an uploaded image into a Sample.
type Preprocessor interface {
	Preprocess(r io.Reader) (Sample, error)
}

// ImageArchive port (optional copy of uploaded images)
type ImageArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
