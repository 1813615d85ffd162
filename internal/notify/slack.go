package notify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	slackapi "github.com/slack-go/slack"
)

// maxRetries bounds rate-limit retries for a single post.
const maxRetries = 3

// slackClient abstracts the Slack API for testing.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts deal notifications to a Slack channel.
type Slack struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a Slack notifier.
type SlackOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack notifier.
func NewSlack(opts SlackOpts) (*Slack, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack: channel is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Slack{client: client, channelID: opts.ChannelID}, nil
}

// DealAccepted implements Notifier.
func (s *Slack) DealAccepted(ctx context.Context, d Deal) error {
	summary := d.Summary()
	header := slackapi.NewTextBlockObject(slackapi.MarkdownType, "*"+summary+"*", false, false)
	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Final*\n₹%d/kg", d.FinalPrice), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Listed*\n₹%d/kg", d.ListedPrice), false, false),
	}
	options := []slackapi.MsgOption{
		slackapi.MsgOptionText(summary, false),
		slackapi.MsgOptionBlocks(
			slackapi.NewSectionBlock(header, fields, nil),
			slackapi.NewContextBlock("", slackapi.NewTextBlockObject(slackapi.PlainTextType, "session "+d.SessionID, false, false)),
		),
	}
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := s.client.PostMessage(s.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("notify: slack: post message: %w", err)
	}
	return nil
}

// retryOnRateLimit retries fn while Slack reports a rate limit.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) || attempt == maxRetries {
			return err
		}
		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
