package analysis

import "errors"

var (
	// ErrInvalidImage means the upload could not be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrCorruptHistory means the stored log exists but cannot be parsed.
	ErrCorruptHistory = errors.New("corrupt history log")

	// ErrLabelSchema means the label file does not follow "<index> <text>" per line.
	ErrLabelSchema = errors.New("label file schema violation")

	// ErrLabelMismatch means the model output width differs from the label count.
	ErrLabelMismatch = errors.New("model output does not match label count")

	// ErrBadTimestamp means a stored record has a timestamp the aggregator cannot read.
	ErrBadTimestamp = errors.New("unreadable record timestamp")

	ErrModelClosed = errors.New("model closed")

	// ErrQuotaExceeded indicates a remote model provider refused the call for quota/limit reasons (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("model provider quota exceeded")
)
