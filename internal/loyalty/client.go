package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
)

// Client issues authenticated calls against the loyalty platform REST
// API. The bearer token travels in the X-CAP-API-OAUTH-TOKEN header and
// is acquired per call from the token source.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a loyalty client.
func NewClient(cfg config.LoyaltyConfig, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		tokens:     tokens,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("X-CAP-API-OAUTH-TOKEN", token)
	return req, nil
}
