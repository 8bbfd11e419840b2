// Package content fetches jokes, facts, quotes, insults and memes from public JSON APIs.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"cerealbot/metrics"
)

const userAgent = "Cereal Bot 1.0"

// Endpoints are the upstream URLs; tests point them at an httptest server
type Endpoints struct {
	// Reddit is formatted with the subreddit name
	Reddit  string
	DadJoke string
	Fact    string
	Insult  string
	Quote   string
}

var DefaultEndpoints = Endpoints{
	Reddit:  "https://www.reddit.com/r/%s/hot.json?limit=100",
	DadJoke: "https://icanhazdadjoke.com/",
	Fact:    "https://uselessfacts.jsph.pl/random.json?language=en",
	Insult:  "https://evilinsult.com/generate_insult.php?lang=en&type=json",
	Quote:   "https://zenquotes.io/api/random",
}

type Client struct {
	http       *http.Client
	endpoints  Endpoints
	subreddits []string
	attempts   int
	intN       func(n int) int
	metrics    *metrics.Metrics
}

func New(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		endpoints:  DefaultEndpoints,
		subreddits: DefaultSubreddits,
		attempts:   MemeAttempts,
		intN:       rand.IntN,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getJSON issues a GET and decodes a 2xx body into out
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("content http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
