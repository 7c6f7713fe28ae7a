package prompt

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt(labels []analysis.Label) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = fmt.Sprintf("%q", l.Name)
	}
	return fmt.Sprintf(`You are an image classifier for photos of rooms. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Score every one of these classes exactly as written: %s.
- Scores are probabilities between 0 and 1 and should sum to 1.
- Judge only tidiness: clutter on floor, bed, desk and surfaces. Ignore decoration style, lighting and photo quality.

Schema:
{"scores": {"<class>": <number>, ...}}`, strings.Join(names, ", "))
}

// GetUserPrompt is the text that accompanies the image.
func GetUserPrompt() string {
	return "Classify this room photo and respond with the JSON per schema."
}

// Scores is the structure the system prompt asks for.
type Scores struct {
	Scores map[string]float64 `json:"scores"`
}

// ParseScores turns a model reply into one probability per label, in label order.
// Missing classes score 0; the result is renormalized to sum to 1.
func ParseScores(content string, labels []analysis.Label) ([]float32, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var s Scores
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err != nil {
		return nil, fmt.Errorf("parse scores: %w", err)
	}

	probs := make([]float64, len(labels))
	var sum float64
	for i, l := range labels {
		v := s.Scores[l.Name]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		probs[i] = v
		sum += v
	}
	if sum == 0 {
		return nil, fmt.Errorf("parse scores: no known class scored in %q", content)
	}

	out := make([]float32, len(probs))
	for i, v := range probs {
		out[i] = float32(v / sum)
	}
	return out, nil
}
