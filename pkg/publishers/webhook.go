package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/daily-brief/internal/logger"
	"github.com/samvad-hq/daily-brief/pkg/httpclient"
)

// webhookPublisher posts the event as JSON to an HTTP endpoint; any 2xx answer counts as delivered.
type webhookPublisher struct {
	id     string
	method string
	url    string
	client *resty.Client
	log    logger.Logger
}

func newWebhookPublisher(_ context.Context, cfg Config, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q: http block is required", cfg.ID)
	}
	client := httpclient.NewRestyHTTPClient(cfg.HTTP.Timeout()).
		SetHeaders(cfg.HTTP.Headers).
		SetHeader("Content-Type", "application/json")

	return &webhookPublisher{
		id:     cfg.ID,
		method: cfg.HTTP.Method,
		url:    cfg.HTTP.URL,
		client: client,
		log:    logger.Ensure(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

func (w *webhookPublisher) Publish(ctx context.Context, evt PageEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("X-Brief-Page", evt.PageID).
		SetBody(payload).
		Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("webhook answered %d: %s", code, snippet(resp.Body()))
	}

	w.log.DebugObj("webhook delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"page_id":      evt.PageID,
		"status":       resp.StatusCode(),
	})
	return nil
}

// snippet keeps error messages short when a sink answers with a large body.
func snippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
