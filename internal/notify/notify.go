// Package notify delivers shift pages to Slack and remembers which shifts
// were already paged.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrMissingToken = errors.New("notify: slack token not set")

// Notifier sends a message to a channel. ok is true when the provider
// accepted it; raw is the decoded provider response.
type Notifier interface {
	SendMessage(ctx context.Context, message, channel string, blocks []Block) (ok bool, raw map[string]any, err error)
}

// Block is a Slack layout block.
type Block struct {
	Type string `json:"type"`
	Text *Text  `json:"text,omitempty"`
}

// Text is a Slack text object.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SectionBlock returns a section block with markdown text.
func SectionBlock(markdown string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: markdown}}
}

type postMessageRequest struct {
	Channel string  `json:"channel"`
	Text    string  `json:"text"`
	Blocks  []Block `json:"blocks,omitempty"`
}

// SlackClient posts to the Slack Web API.
type SlackClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewSlackClient creates a client for baseURL (normally
// https://slack.com/api). Requests are not retried.
func NewSlackClient(baseURL, token string, logger *zap.Logger) (*SlackClient, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("Accept", "application/json")

	return &SlackClient{httpClient: client, logger: logger}, nil
}

// SendMessage calls chat.postMessage. A message counts as delivered when
// the response is HTTP 200 with "ok": true.
func (c *SlackClient) SendMessage(ctx context.Context, message, channel string, blocks []Block) (bool, map[string]any, error) {
	var raw map[string]any
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(postMessageRequest{Channel: channel, Text: message, Blocks: blocks}).
		SetResult(&raw).
		SetError(&raw).
		Post("/chat.postMessage")
	if err != nil {
		c.logger.Error("Slack API call failed", zap.Error(err), zap.String("channel", channel))
		return false, nil, fmt.Errorf("failed to call Slack API: %w", err)
	}

	ok, _ := raw["ok"].(bool)
	if resp.StatusCode() != http.StatusOK || !ok {
		c.logger.Error("Slack response not ok",
			zap.Int("status_code", resp.StatusCode()),
			zap.Any("error", raw["error"]),
			zap.String("channel", channel),
		)
		return false, raw, nil
	}

	return true, raw, nil
}
