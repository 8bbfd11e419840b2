package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// MemeAttempts bounds how many subreddit fetches a single meme request may make
const MemeAttempts = 5

var DefaultSubreddits = []string{"darkjokes", "shitpost", "dankmemes", "me_irl", "funny", "shitposting"}

// FallbackRoasts are used when the insult API is unavailable
var FallbackRoasts = []string{
	"I'd explain it to you but I left my crayons at home.",
	"you're like a cloud. When you disappear, it's a beautiful day.",
	"if brains were dynamite, you wouldn't have enough to blow your nose.",
	"you bring everyone so much joy... when you leave the room.",
	"I'd agree with you but then we'd both be wrong.",
	"you're proof that evolution can go in reverse.",
	"somewhere out there is a tree tirelessly producing oxygen for you. Go apologize to it.",
}

type Meme struct {
	Title     string
	ImageURL  string
	Permalink string
	Ups       int
	Subreddit string
}

type Quote struct {
	Text   string
	Author string
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
	Ups       int    `json:"ups"`
	PostHint  string `json:"post_hint"`
	Over18    bool   `json:"over_18"`
}

// Meme picks a random safe image post from a random subreddit. Each attempt draws a new
// subreddit; a failed request or a page without usable posts counts as a failed attempt.
func (c *Client) Meme(ctx context.Context) (*Meme, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sub := c.subreddits[c.intN(len(c.subreddits))]
		meme, err := c.memeFrom(ctx, sub)
		c.metrics.ContentFetch("meme", err)
		if err == nil {
			return meme, nil
		}

		lastErr = err
		log.WithFields(log.Fields{
			"subreddit": sub,
			"attempt":   attempt,
			"error":     err,
		}).Debug("Meme fetch attempt failed")
	}
	return nil, fmt.Errorf("%w: meme after %d attempts: %v", ErrNoResult, c.attempts, lastErr)
}

func (c *Client) memeFrom(ctx context.Context, subreddit string) (*Meme, error) {
	var listing redditListing
	if err := c.getJSON(ctx, fmt.Sprintf(c.endpoints.Reddit, subreddit), &listing); err != nil {
		return nil, err
	}

	var posts []redditPost
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.PostHint == "image" && !p.Over18 && p.URL != "" {
			posts = append(posts, p)
		}
	}
	if len(posts) == 0 {
		return nil, ErrNoResult
	}

	p := posts[c.intN(len(posts))]
	return &Meme{
		Title:     truncate(p.Title, 256),
		ImageURL:  p.URL,
		Permalink: "https://reddit.com" + p.Permalink,
		Ups:       p.Ups,
		Subreddit: subreddit,
	}, nil
}

func (c *Client) DadJoke(ctx context.Context) (string, error) {
	var out struct {
		Joke string `json:"joke"`
	}
	err := c.getJSON(ctx, c.endpoints.DadJoke, &out)
	if err == nil && strings.TrimSpace(out.Joke) == "" {
		err = ErrNoResult
	}
	c.metrics.ContentFetch("joke", err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch dad joke: %w", err)
	}
	return out.Joke, nil
}

func (c *Client) Fact(ctx context.Context) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := c.getJSON(ctx, c.endpoints.Fact, &out)
	if err == nil && strings.TrimSpace(out.Text) == "" {
		err = ErrNoResult
	}
	c.metrics.ContentFetch("fact", err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch fact: %w", err)
	}
	return out.Text, nil
}

func (c *Client) Quote(ctx context.Context) (*Quote, error) {
	var out []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	err := c.getJSON(ctx, c.endpoints.Quote, &out)
	if err == nil && (len(out) == 0 || strings.TrimSpace(out[0].Q) == "") {
		err = ErrNoResult
	}
	c.metrics.ContentFetch("quote", err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	return &Quote{Text: out[0].Q, Author: out[0].A}, nil
}

func (c *Client) Insult(ctx context.Context) (string, error) {
	var out struct {
		Insult string `json:"insult"`
	}
	err := c.getJSON(ctx, c.endpoints.Insult, &out)
	if err == nil && strings.TrimSpace(out.Insult) == "" {
		err = ErrNoResult
	}
	c.metrics.ContentFetch("insult", err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch insult: %w", err)
	}
	return out.Insult, nil
}

// Roast returns an insult from the API, or one of FallbackRoasts when the API fails.
// It never returns an empty string.
func (c *Client) Roast(ctx context.Context) (text string, fromAPI bool) {
	insult, err := c.Insult(ctx)
	if err == nil {
		return insult, true
	}
	if !errors.Is(err, context.Canceled) {
		log.WithError(err).Debug("Insult API unavailable, using fallback roast")
	}
	return FallbackRoasts[c.intN(len(FallbackRoasts))], false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
