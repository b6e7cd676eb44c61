package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache map[string]string

func (m mapCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m mapCache) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func newTranslateServer(t *testing.T, calls *int32, translated string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		var body apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text", body.Format)
		assert.Equal(t, "en", body.Source)
		assert.Equal(t, "hi", body.Target)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiResponse{TranslatedText: translated})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFailingServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TranslateAndCache(t *testing.T) {
	var calls int32
	srv := newTranslateServer(t, &calls, "चूड़ी")

	cache := mapCache{}
	client, err := NewClient(Config{BaseURL: srv.URL, FallbackURL: srv.URL}, cache)
	require.NoError(t, err)

	req := Request{Text: "Bangle", Source: "en", Target: "hi"}
	res, err := client.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "चूड़ी", res.Text)
	assert.False(t, res.Cached)

	res, err = client.Translate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "चूड़ी", res.Text)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, cache, CacheKey(req))
}

func TestClient_FallbackOnPrimaryFailure(t *testing.T) {
	var primaryCalls, fallbackCalls int32
	primary := newFailingServer(t, &primaryCalls)
	fallback := newTranslateServer(t, &fallbackCalls, "कड़ा")

	client, err := NewClient(Config{BaseURL: primary.URL, FallbackURL: fallback.URL}, nil)
	require.NoError(t, err)

	res, err := client.Translate(context.Background(), Request{Text: "Kada", Source: "EN", Target: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "कड़ा", res.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&primaryCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fallbackCalls))
}

func TestClient_AllEndpointsFail(t *testing.T) {
	var calls int32
	srv := newFailingServer(t, &calls)

	client, err := NewClient(Config{FallbackURL: srv.URL}, mapCache{})
	require.NoError(t, err)

	res, err := client.Translate(context.Background(), Request{Text: "Kada", Source: "en", Target: "hi"})
	assert.ErrorIs(t, err, ErrTranslateFailed)
	assert.Equal(t, "Kada", res.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ShortCircuits(t *testing.T) {
	client, err := NewClient(Config{FallbackURL: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)

	res, err := client.Translate(context.Background(), Request{Text: "Bangle", Source: "en", Target: "en"})
	require.NoError(t, err)
	assert.Equal(t, "Bangle", res.Text)

	res, err = client.Translate(context.Background(), Request{Text: "   ", Source: "en", Target: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "   ", res.Text)

	_, err = client.Translate(context.Background(), Request{Text: "Bangle", Target: "hi"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConfig_Endpoints(t *testing.T) {
	assert.Equal(t, []string{FallbackURL}, (&Config{}).endpoints())
	assert.Equal(t, []string{"https://mt.example.com/translate", FallbackURL},
		(&Config{BaseURL: "https://mt.example.com/translate"}).endpoints())
	assert.Equal(t, []string{FallbackURL}, (&Config{BaseURL: FallbackURL}).endpoints())
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(Request{Text: "Bangle", Source: "en", Target: "hi"})
	b := CacheKey(Request{Text: "Bangle", Source: "en", Target: "ta"})
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^translate:en:hi:[0-9a-f]{64}$`, a)
}
