package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// Client reads orders and returns from the commerce platform REST API.
type Client struct {
	baseURL      string
	clientID     string
	sharedSecret string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient constructs a commerce client from config. APIHost may carry
// an explicit scheme; bare hosts default to https.
func NewClient(cfg config.CommerceConfig, logger *zap.Logger) *Client {
	base := cfg.APIHost
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Client{
		baseURL:      base + "/api",
		clientID:     cfg.ClientID,
		sharedSecret: cfg.SharedSecret,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// FulfilledOrders returns orders whose fulfillment completed and that
// closed within the trailing window starting at since. The synthesized
// view is requested so totals are computed server side.
func (c *Client) FulfilledOrders(ctx context.Context, since time.Time) ([]domain.CommerceOrder, error) {
	filter := fmt.Sprintf("fulfillmentStatus eq Fulfilled and closedDate ge %s", since.UTC().Format(time.RFC3339))

	q := url.Values{}
	q.Set("filter", filter)
	q.Set("mode", "synthesized")

	var collection orderCollection
	if err := c.get(ctx, "/commerce/orders?"+q.Encode(), &collection); err != nil {
		return nil, err
	}

	orders := make([]domain.CommerceOrder, 0, len(collection.Items))
	for _, item := range collection.Items {
		orders = append(orders, item.toDomain())
	}
	return orders, nil
}

// OrderByID fetches one order in its synthesized view.
func (c *Client) OrderByID(ctx context.Context, orderID string) (*domain.CommerceOrder, error) {
	q := url.Values{}
	q.Set("mode", "synthesized")

	var payload orderPayload
	if err := c.get(ctx, "/commerce/orders/"+url.PathEscape(orderID)+"?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	order := payload.toDomain()
	return &order, nil
}

// ReturnByID fetches one return aggregate.
func (c *Client) ReturnByID(ctx context.Context, returnID string) (*domain.CommerceReturn, error) {
	var payload returnPayload
	if err := c.get(ctx, "/commerce/returns/"+url.PathEscape(returnID), &payload); err != nil {
		return nil, err
	}
	ret := payload.toDomain()
	return &ret, nil
}

// FullyRefundedReturns returns returns fully refunded within the
// trailing window starting at since.
func (c *Client) FullyRefundedReturns(ctx context.Context, since time.Time) ([]domain.CommerceReturn, error) {
	filter := fmt.Sprintf("refundStatus eq FullyRefunded and createDate ge %s", since.UTC().Format(time.RFC3339))

	q := url.Values{}
	q.Set("filter", filter)

	var collection returnCollection
	if err := c.get(ctx, "/commerce/returns?"+q.Encode(), &collection); err != nil {
		return nil, err
	}

	returns := make([]domain.CommerceReturn, 0, len(collection.Items))
	for _, item := range collection.Items {
		returns = append(returns, item.toDomain())
	}
	return returns, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-app-client-id", c.clientID)
	req.Header.Set("x-app-shared-secret", c.sharedSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewLookupFailure("commerce platform", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFound("commerce record", map[string]any{"path": path})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewLookupFailure("commerce platform", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
