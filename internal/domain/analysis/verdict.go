package analysis

import "strings"

// DefaultCleanIndicator marks the clean class in the shipped label file.
const DefaultCleanIndicator = "깨끗한"

// FormatVerdict maps a label to the user-facing verdict.
func FormatVerdict(label, indicator string) Verdict {
	if indicator == "" {
		indicator = DefaultCleanIndicator
	}
	v := Verdict{Label: label, Tier: TierWarning}
	if strings.Contains(label, indicator) {
		v.Clean = true
		v.Tier = TierSuccess
	}
	return v
}
