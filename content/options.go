package content

import (
	"net/http"

	"cerealbot/metrics"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

func WithSubreddits(subs ...string) Option {
	return func(c *Client) {
		if len(subs) > 0 {
			c.subreddits = subs
		}
	}
}

// WithRandom replaces the source of random indexes; f must return a value in [0, n)
func WithRandom(f func(n int) int) Option {
	return func(c *Client) { c.intN = f }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}
