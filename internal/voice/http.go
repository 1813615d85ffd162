package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultHTTPTimeout bounds one recognition request.
const DefaultHTTPTimeout = 15 * time.Second

// HTTPRecognizer posts raw audio to a speech gateway:
//
//	POST {endpoint}/recognize?locale=hi-IN
//	Content-Type: application/octet-stream
//
// and expects {"transcript": "..."} back.
type HTTPRecognizer struct {
	client *resty.Client
}

// HTTPRecognizerOpts holds parameters for creating an HTTPRecognizer.
type HTTPRecognizerOpts struct {
	Endpoint string
	Timeout  time.Duration // defaults to DefaultHTTPTimeout
}

type recognizeResponse struct {
	Transcript string `json:"transcript"`
}

// NewHTTPRecognizer creates an HTTPRecognizer.
func NewHTTPRecognizer(opts HTTPRecognizerOpts) (*HTTPRecognizer, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("voice: http recognizer: endpoint is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTPRecognizer{client: client}, nil
}

// Recognize implements Recognizer.
func (h *HTTPRecognizer) Recognize(ctx context.Context, audio []byte, locale string) (string, error) {
	var out recognizeResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("locale", locale).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(audio).
		SetResult(&out).
		Post("/recognize")
	if err != nil {
		return "", fmt.Errorf("voice: recognize: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("voice: recognize: status %d", resp.StatusCode())
	}
	return out.Transcript, nil
}
