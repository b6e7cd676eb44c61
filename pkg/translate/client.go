package translate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/banglehouse/bangles-backend/pkg/logger"
)

// Cache memoizes translations. storage.KeyValueStore satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Client calls a LibreTranslate-compatible API and memoizes results.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      Cache
}

// NewClient creates a new translation client. cache may be nil.
func NewClient(config Config, cache Cache) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}, nil
}

// CacheKey is translate:<source>:<target>:<sha256 of text>.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.Text))
	return fmt.Sprintf("translate:%s:%s:%s", req.Source, req.Target, hex.EncodeToString(sum[:]))
}

// Translate returns req.Text in the target language. Blank text and
// identical languages are returned unchanged without a call. On failure the
// error is returned together with the untranslated text.
func (c *Client) Translate(ctx context.Context, req Request) (Result, error) {
	req.Source = strings.ToLower(strings.TrimSpace(req.Source))
	req.Target = strings.ToLower(strings.TrimSpace(req.Target))
	if req.Source == "" || req.Target == "" {
		return Result{Text: req.Text}, ErrInvalidRequest
	}
	if strings.TrimSpace(req.Text) == "" || req.Source == req.Target {
		return Result{Text: req.Text}, nil
	}

	key := CacheKey(req)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			return Result{Text: cached, Cached: true}, nil
		}
	}

	var lastErr error
	for _, endpoint := range c.config.endpoints() {
		text, err := c.doRequest(ctx, endpoint, req)
		if err != nil {
			logger.Warn("Translate endpoint failed", map[string]interface{}{
				"endpoint": endpoint,
				"error":    err.Error(),
			})
			lastErr = err
			continue
		}

		if c.cache != nil {
			if err := c.cache.Set(ctx, key, text); err != nil {
				logger.Warn("Failed to cache translation", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
		return Result{Text: text}, nil
	}

	return Result{Text: req.Text}, lastErr
}

// doRequest performs one POST to endpoint
func (c *Client) doRequest(ctx context.Context, endpoint string, req Request) (string, error) {
	reqBody, err := json.Marshal(apiRequest{
		Q:      req.Text,
		Source: req.Source,
		Target: req.Target,
		Format: "text",
		APIKey: c.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apiError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrTranslateFailed, resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("%w: unexpected status code %d", ErrTranslateFailed, resp.StatusCode)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", ErrTranslateFailed, err)
	}
	return out.TranslatedText, nil
}
