package analysis

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// legacyPrefixLen is the "<digit><space>" tag the exported label files carry.
const legacyPrefixLen = 2

// ParseLabels reads a label file. Every non-blank line must be
// "<index> <text>" with indices 0..n-1 in order.
func ParseLabels(r io.Reader) ([]Label, error) {
	var out []Label
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(s.Text(), "\ufeff"))
		if line == "" {
			continue
		}

		idxStr, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: line %d %q: expected \"<index> <text>\"", ErrLabelSchema, lineNo, line)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d %q: index %q is not a number", ErrLabelSchema, lineNo, line, idxStr)
		}
		if idx != len(out) {
			return nil, fmt.Errorf("%w: line %d: index %d out of order, want %d", ErrLabelSchema, lineNo, idx, len(out))
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty label text", ErrLabelSchema, lineNo)
		}
		out = append(out, Label{Index: idx, Name: name})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrLabelSchema)
	}
	return out, nil
}

// StripLegacyPrefix drops the fixed two-character tag from a raw label line.
// Counts characters, not bytes, so multi-byte labels survive.
func StripLegacyPrefix(line string) string {
	r := []rune(line)
	if len(r) <= legacyPrefixLen {
		return ""
	}
	return strings.TrimSpace(string(r[legacyPrefixLen:]))
}

// Select picks the top class. Ties go to the lowest index.
func Select(probs []float32, labels []Label) (Prediction, error) {
	if len(labels) == 0 || len(probs) != len(labels) {
		return Prediction{}, fmt.Errorf("%w: %d outputs, %d labels", ErrLabelMismatch, len(probs), len(labels))
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}

	conf := float64(probs[best]) * 100
	if conf < 0 || math.IsNaN(conf) {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return Prediction{
		Index:      best,
		Label:      labels[best].Name,
		Confidence: conf,
	}, nil
}
