package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabels(t *testing.T) {
	t.Run("shipped label file", func(t *testing.T) {
		labels, err := ParseLabels(strings.NewReader("0 깨끗한 방\n1 지저분한 방\n"))
		require.NoError(t, err)
		assert.Equal(t, []Label{{Index: 0, Name: "깨끗한 방"}, {Index: 1, Name: "지저분한 방"}}, labels)
	})

	t.Run("crlf and blank lines", func(t *testing.T) {
		labels, err := ParseLabels(strings.NewReader("\ufeff0 clean\r\n\r\n1 messy\r\n"))
		require.NoError(t, err)
		assert.Len(t, labels, 2)
		assert.Equal(t, "messy", labels[1].Name)
	})

	t.Run("two digit index", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&b, "%d label%d\n", i, i)
		}
		labels, err := ParseLabels(strings.NewReader(b.String()))
		require.NoError(t, err)
		assert.Equal(t, "label11", labels[11].Name)
	})

	tests := []struct {
		name  string
		input string
	}{
		{"missing prefix", "깨끗한 방\n"},
		{"no separator", "0\n"},
		{"out of order", "1 messy\n0 clean\n"},
		{"gap", "0 clean\n2 messy\n"},
		{"empty file", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLabels(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLabelSchema)
		})
	}
}

func TestParseLabels_DiagnosticNamesLine(t *testing.T) {
	_, err := ParseLabels(strings.NewReader("0 clean\nmessy room\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestStripLegacyPrefix(t *testing.T) {
	assert.Equal(t, "깨끗한 방", StripLegacyPrefix("0 깨끗한 방"))
	assert.Equal(t, "지저분한 방", StripLegacyPrefix("1 지저분한 방\n"))
	assert.Equal(t, "", StripLegacyPrefix("0"))
}

func TestSelect(t *testing.T) {
	labels := []Label{{Index: 0, Name: "깨끗한 방"}, {Index: 1, Name: "지저분한 방"}}

	t.Run("argmax", func(t *testing.T) {
		p, err := Select([]float32{0.25, 0.75}, labels)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Index)
		assert.Equal(t, "지저분한 방", p.Label)
		assert.InDelta(t, 75.0, p.Confidence, 1e-4)
	})

	t.Run("tie goes to first", func(t *testing.T) {
		p, err := Select([]float32{0.5, 0.5}, labels)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Index)
	})

	t.Run("confidence bounded", func(t *testing.T) {
		p, err := Select([]float32{1.2, -0.2}, labels)
		require.NoError(t, err)
		assert.Equal(t, 100.0, p.Confidence)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := Select([]float32{0.1, 0.2, 0.7}, labels)
		assert.ErrorIs(t, err, ErrLabelMismatch)
	})

	t.Run("no labels", func(t *testing.T) {
		_, err := Select(nil, nil)
		assert.ErrorIs(t, err, ErrLabelMismatch)
	})
}
