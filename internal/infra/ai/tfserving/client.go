// Package tfserving calls a TensorFlow Serving REST endpoint hosting the room model.
package tfserving

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

const defaultTimeout = 30 * time.Second

// Client implements analysis.Model against POST {BaseURL}/v1/models/{Name}:predict.
type Client struct {
	BaseURL string
	Name    string
	HTTP    *http.Client
}

func NewClient(baseURL, name string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Name:    name,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float32 `json:"predictions"`
	Error       string      `json:"error"`
}

func (c *Client) Predict(ctx context.Context, s analysis.Sample) ([]float32, error) {
	body, err := sonic.Marshal(predictRequest{Instances: [][][][]float32{nest(s.Tensor)}})
	if err != nil {
		return nil, fmt.Errorf("encode instances: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.BaseURL, c.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tfserving predict: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	var out predictResponse
	decodeErr := sonic.Unmarshal(raw, &out)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, analysis.ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("tfserving status=%d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode predict response: %w", decodeErr)
	}
	if len(out.Predictions) != 1 {
		return nil, fmt.Errorf("tfserving returned %d predictions, want 1", len(out.Predictions))
	}
	return out.Predictions[0], nil
}

// Close is a no-op; the server owns the model.
func (c *Client) Close() error { return nil }

// Check hits the model status endpoint.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/models/%s", c.BaseURL, c.Name), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tfserving model status=%d", resp.StatusCode)
	}
	return nil
}

// nest reshapes a flat (1,h,w,c) tensor into h×w×c rows.
func nest(t analysis.Tensor) [][][]float32 {
	h, w, c := int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3])
	img := make([][][]float32, h)
	for y := 0; y < h; y++ {
		row := make([][]float32, w)
		for x := 0; x < w; x++ {
			off := (y*w + x) * c
			row[x] = t.Data[off : off+c]
		}
		img[y] = row
	}
	return img
}
