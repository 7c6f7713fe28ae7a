// Package ai holds what every classifier backend shares.
package ai

import (
	"fmt"
	"os"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// LoadLabelFile reads and validates a "<index> <text>" label file.
func LoadLabelFile(path string) ([]analysis.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	labels, err := analysis.ParseLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return labels, nil
}
