package loyalty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// customerNotFoundCode is the error code the platform returns for an
// unknown identifier.
const customerNotFoundCode = 8015

type lookupError struct {
	Status  bool   `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lookupResponse struct {
	Entity json.RawMessage `json:"entity"`
	Errors []lookupError   `json:"errors"`
}

// CustomerExists reports whether the given email identifies a known
// loyalty member. A response carrying an errors array (code 8015 for an
// unknown identifier) means absent; any other successful shape means
// present. Transport failures are returned to the caller, which is
// expected to degrade to "absent".
func (c *Client) CustomerExists(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("source", "ALL")
	q.Set("identifierName", "email")
	q.Set("identifierValue", email)

	req, err := c.newRequest(ctx, http.MethodGet, "/v2/customers/lookup?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, apperrors.NewLookupFailure("customer", err)
	}
	defer resp.Body.Close()

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, apperrors.NewLookupFailure("customer", err)
	}

	if len(payload.Errors) > 0 {
		return false, nil
	}
	return true, nil
}
