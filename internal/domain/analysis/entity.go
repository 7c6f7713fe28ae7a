package analysis

import (
	"image"
)

// TimestampLayout is how record timestamps are written (local time, seconds precision).
const TimestampLayout = "2006-01-02 15:04:05"

// Input geometry expected by the classifier
const (
	InputSize     = 224
	InputChannels = 3
)

// Record is one stored outcome of a classification run.
// ID is optional so logs written before ids existed still load.
type Record struct {
	ID         string  `json:"id,omitempty"`
	Timestamp  string  `json:"timestamp"`
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
}

// Label is one line of the label file, index-aligned with the model output.
type Label struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Tensor NHWC float32, shape (1,224,224,3)
type Tensor struct {
	Shape [4]int64
	Data  []float32
}

// Sample is a preprocessed upload: the fitted image and its normalized tensor.
type Sample struct {
	Image  *image.RGBA
	Tensor Tensor
}

// Prediction is the selected top class.
type Prediction struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Tier enum
type Tier string

const (
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
)

// Verdict value object
type Verdict struct {
	Label string `json:"label"`
	Clean bool   `json:"clean"`
	Tier  Tier   `json:"tier"`
}

// Outcome is what a single pipeline run produces.
type Outcome struct {
	Record     Record     `json:"record"`
	Verdict    Verdict    `json:"verdict"`
	Prediction Prediction `json:"prediction"`
	ArchiveURL string     `json:"archive_url,omitempty"`
}
