package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// SendTransaction posts one sale transaction. The endpoint takes a batch
// array; this sends a one-element batch per order.
func (c *Client) SendTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/x/neo/transaction/sale", []*domain.LoyaltyTransaction{txn})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError("failed to send transaction", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewDeliveryError(fmt.Sprintf("transaction rejected with status %d", resp.StatusCode), nil)
	}

	var payload struct {
		Response []struct {
			Result json.RawMessage `json:"result"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return apperrors.NewDeliveryError("malformed transaction response", err)
	}

	c.logger.Debug("transaction accepted",
		zap.String("bill_number", txn.BillNumber),
		zap.Int("results", len(payload.Response)))
	return nil
}

// SendReturn posts one return transaction via the singular transactions
// endpoint, identified by the customer email.
func (c *Client) SendReturn(ctx context.Context, txn *domain.LoyaltyReturnTransaction) error {
	q := url.Values{}
	q.Set("source", "INSTORE")
	q.Set("identifierName", "email")
	q.Set("identifierValue", txn.IdentifierValue)

	req, err := c.newRequest(ctx, http.MethodPost, "/v2/transactions?"+q.Encode(), txn)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError("failed to send return", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewDeliveryError(fmt.Sprintf("return rejected with status %d", resp.StatusCode), nil)
	}

	c.logger.Debug("return accepted", zap.String("bill_number", txn.BillNumber))
	return nil
}
