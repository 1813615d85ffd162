package i18n

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRemoteTimeout bounds a single remote translation request.
const DefaultRemoteTimeout = 3 * time.Second

// RemoteTranslator calls a LibreTranslate-compatible HTTP endpoint and falls
// back to another Translator whenever the remote call fails, so it keeps the
// total Translator contract.
type RemoteTranslator struct {
	client   *resty.Client
	apiKey   string
	fallback Translator
	timeout  time.Duration
}

// RemoteTranslatorOpts holds parameters for creating a RemoteTranslator.
type RemoteTranslatorOpts struct {
	Endpoint string        // base URL, e.g. http://localhost:5000
	APIKey   string        // optional
	Timeout  time.Duration // defaults to DefaultRemoteTimeout
	Fallback Translator    // defaults to StaticTranslator
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewRemoteTranslator creates a RemoteTranslator.
func NewRemoteTranslator(opts RemoteTranslatorOpts) (*RemoteTranslator, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("i18n: remote translator: endpoint is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = StaticTranslator{}
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.Endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &RemoteTranslator{client: client, apiKey: opts.APIKey, fallback: fallback, timeout: timeout}, nil
}

// Translate implements Translator.
func (rt *RemoteTranslator) Translate(text, from, to string) string {
	ctx, cancel := context.WithTimeout(context.Background(), rt.timeout)
	defer cancel()
	out, err := rt.TranslateContext(ctx, text, from, to)
	if err != nil {
		log.Printf("i18n: remote translate %s->%s failed, using fallback: %v", from, to, err)
		return rt.fallback.Translate(text, from, to)
	}
	return out
}

// TranslateContext performs one remote translation request.
func (rt *RemoteTranslator) TranslateContext(ctx context.Context, text, from, to string) (string, error) {
	var out translateResponse
	resp, err := rt.client.R().
		SetContext(ctx).
		SetBody(translateRequest{
			Q:      text,
			Source: Normalize(from),
			Target: Normalize(to),
			Format: "text",
			APIKey: rt.apiKey,
		}).
		SetResult(&out).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("i18n: translate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("i18n: translate: status %d", resp.StatusCode())
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("i18n: translate: empty response")
	}
	return out.TranslatedText, nil
}
