package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spec-kit/loyalty-bridge/internal/config"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// authorizer performs the upstream authorization handshake.
type authorizer interface {
	authorize(ctx context.Context) (string, error)
}

type authClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func newAuthClient(cfg config.LoyaltyConfig) *authClient {
	return &authClient{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{},
	}
}

type authRequest struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type authResponse struct {
	Data struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
		TokenType   string `json:"tokenType"`
	} `json:"data"`
}

type authErrorResponse struct {
	Message string `json:"message"`
}

// authorize exchanges client credentials for a bearer token. Upstream
// rejections and transport failures both surface as authorization
// errors; nothing is retried here.
func (c *authClient) authorize(ctx context.Context) (string, error) {
	body, err := json.Marshal(authRequest{Key: c.clientID, Secret: c.clientSecret})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/oauth/token/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewAuthorizationError("authorization failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var upstream authErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&upstream)
		if upstream.Message == "" {
			upstream.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return "", apperrors.NewAuthorizationError(fmt.Sprintf("authorization failed: %s", upstream.Message), nil)
	}

	var payload authResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperrors.NewAuthorizationError("authorization failed: malformed response", err)
	}
	if payload.Data.AccessToken == "" {
		return "", apperrors.NewAuthorizationError("authorization failed: empty access token", nil)
	}

	return payload.Data.AccessToken, nil
}
