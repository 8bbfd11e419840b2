package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	mu          sync.Mutex
	redditHits  []string
	redditPages map[string]int // subreddit -> status; missing means 200 with posts
	posts       []map[string]any
	status      map[string]int // path -> status
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status, ok := f.status[r.URL.Path]; ok {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("upstream unhappy"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/r/"):
		sub := strings.Split(r.URL.Path, "/")[2]
		f.redditHits = append(f.redditHits, sub)
		if status, ok := f.redditPages[sub]; ok {
			w.WriteHeader(status)
			return
		}
		children := make([]map[string]any, 0, len(f.posts))
		for _, p := range f.posts {
			children = append(children, map[string]any{"data": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"children": children}})
	case r.URL.Path == "/joke":
		_ = json.NewEncoder(w).Encode(map[string]string{"joke": "I'm reading a book about anti-gravity. It's impossible to put down."})
	case r.URL.Path == "/fact":
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Honey never spoils."})
	case r.URL.Path == "/quote":
		_ = json.NewEncoder(w).Encode([]map[string]string{{"q": "Stay hungry.", "a": "Steve Jobs"}})
	case r.URL.Path == "/insult":
		_ = json.NewEncoder(w).Encode(map[string]string{"insult": "You are a sentient typo."})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, up *fakeUpstream, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithEndpoints(Endpoints{
			Reddit:  srv.URL + "/r/%s/hot.json",
			DadJoke: srv.URL + "/joke",
			Fact:    srv.URL + "/fact",
			Insult:  srv.URL + "/insult",
			Quote:   srv.URL + "/quote",
		}),
		WithRandom(func(int) int { return 0 }),
	}, opts...)
	return New(opts...)
}

func TestMeme_FiltersUnsafeAndNonImagePosts(t *testing.T) {
	up := &fakeUpstream{posts: []map[string]any{
		{"title": "nsfw", "url": "https://i.redd.it/a.png", "post_hint": "image", "over_18": true},
		{"title": "text post", "url": "https://reddit.com/x", "post_hint": "self"},
		{"title": "good", "url": "https://i.redd.it/b.png", "post_hint": "image", "permalink": "/r/funny/b", "ups": 42},
	}}
	c := newTestClient(t, up, WithSubreddits("funny"))

	meme, err := c.Meme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "good", meme.Title)
	assert.Equal(t, "https://i.redd.it/b.png", meme.ImageURL)
	assert.Equal(t, "https://reddit.com/r/funny/b", meme.Permalink)
	assert.Equal(t, 42, meme.Ups)
	assert.Equal(t, "funny", meme.Subreddit)
}

func TestMeme_RetriesWithNewSubredditEachAttempt(t *testing.T) {
	up := &fakeUpstream{
		redditPages: map[string]int{"broken": http.StatusServiceUnavailable},
		posts:       []map[string]any{{"title": "ok", "url": "https://i.redd.it/c.png", "post_hint": "image"}},
	}
	calls := 0
	pick := func(n int) int {
		calls++
		// first subreddit pick fails, everything after picks index 1
		if calls == 1 {
			return 0
		}
		return 1 % n
	}
	c := newTestClient(t, up, WithSubreddits("broken", "funny"), WithRandom(pick))

	meme, err := c.Meme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", meme.Title)
	assert.Equal(t, []string{"broken", "funny"}, up.redditHits)
}

func TestMeme_GivesUpAfterFiveAttempts(t *testing.T) {
	up := &fakeUpstream{posts: []map[string]any{
		{"title": "only text", "post_hint": "self"},
	}}
	c := newTestClient(t, up)

	_, err := c.Meme(context.Background())
	require.ErrorIs(t, err, ErrNoResult)
	assert.Len(t, up.redditHits, MemeAttempts)
}

func TestMeme_StopsOnCancelledContext(t *testing.T) {
	up := &fakeUpstream{}
	c := newTestClient(t, up)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Meme(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, up.redditHits)
}

func TestSimpleFetchers(t *testing.T) {
	c := newTestClient(t, &fakeUpstream{})
	ctx := context.Background()

	joke, err := c.DadJoke(ctx)
	require.NoError(t, err)
	assert.Contains(t, joke, "anti-gravity")

	fact, err := c.Fact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Honey never spoils.", fact)

	q, err := c.Quote(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Quote{Text: "Stay hungry.", Author: "Steve Jobs"}, q)
}

func TestFetcher_NonSuccessStatusIsAPIError(t *testing.T) {
	c := newTestClient(t, &fakeUpstream{status: map[string]int{"/fact": http.StatusBadGateway}})

	_, err := c.Fact(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unhappy", apiErr.Body)
}

func TestRoast(t *testing.T) {
	t.Run("from api", func(t *testing.T) {
		c := newTestClient(t, &fakeUpstream{})
		text, fromAPI := c.Roast(context.Background())
		assert.True(t, fromAPI)
		assert.Equal(t, "You are a sentient typo.", text)
	})

	t.Run("fallback", func(t *testing.T) {
		c := newTestClient(t, &fakeUpstream{status: map[string]int{"/insult": http.StatusInternalServerError}})
		text, fromAPI := c.Roast(context.Background())
		assert.False(t, fromAPI)
		assert.Equal(t, FallbackRoasts[0], text)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "abc", truncate("abc", 10))
}
