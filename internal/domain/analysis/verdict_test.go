package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVerdict(t *testing.T) {
	tests := []struct {
		label     string
		indicator string
		clean     bool
		tier      Tier
	}{
		{StripLegacyPrefix("0 깨끗한 방"), "", true, TierSuccess},
		{"지저분한 방", "", false, TierWarning},
		{"clean room", "clean", true, TierSuccess},
		{"messy room", "clean", false, TierWarning},
		{"", "", false, TierWarning},
	}
	for _, tt := range tests {
		v := FormatVerdict(tt.label, tt.indicator)
		assert.Equal(t, tt.clean, v.Clean, "label %q", tt.label)
		assert.Equal(t, tt.tier, v.Tier, "label %q", tt.label)
		assert.Equal(t, tt.label, v.Label)
	}
}
