package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// UpstreamError carries the loyalty platform's own error payload so the
// front door can surface it in-band instead of a blanket 5xx.
type UpstreamError struct {
	Payload json.RawMessage
}

func (e *UpstreamError) Error() string {
	return "loyalty platform rejected request"
}

// CouponService is a request/response facade over the platform's reward
// lookup, redeem, and reactivate endpoints.
type CouponService struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCouponService constructs the facade.
func NewCouponService(cfg config.LoyaltyConfig, tokens TokenSource, logger *zap.Logger) *CouponService {
	return &CouponService{
		baseURL:    cfg.BaseURL,
		tokens:     tokens,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type couponPayload struct {
	Code          string  `json:"code"`
	DiscountValue float64 `json:"discountValue"`
	CreatedDate   string  `json:"createdDate"`
	ValidTill     string  `json:"validTill"`
	Redemptions   []struct {
		ID int64 `json:"id"`
	} `json:"redemptions"`
}

type couponsResponse struct {
	Entity struct {
		Customers []struct {
			Coupons []couponPayload `json:"coupons"`
		} `json:"customers"`
	} `json:"entity"`
}

// ActiveCoupons lists a member's unredeemed coupons in the
// commerce-facing shape.
func (s *CouponService) ActiveCoupons(ctx context.Context, email string) ([]domain.Coupon, error) {
	payload, err := s.coupons(ctx, email, "Active_Unredeemed")
	if err != nil {
		return nil, err
	}

	coupons := make([]domain.Coupon, 0, len(payload))
	for _, coupon := range payload {
		coupons = append(coupons, domain.Coupon{
			Code:             coupon.Code,
			CurrencyCode:     "USD",
			CustomCreditType: "LoyaltyRewards",
			CreditType:       "Custom",
			InitialBalance:   coupon.DiscountValue,
			CurrentBalance:   coupon.DiscountValue,
			IsEnabled:        true,
			ActivationDate:   coupon.CreatedDate,
		})
	}
	return coupons, nil
}

// Redeem marks a coupon code redeemed and returns the platform response.
func (s *CouponService) Redeem(ctx context.Context, code string) (json.RawMessage, error) {
	return s.patch(ctx, "/v2/coupon/redeem", map[string]any{"code": code})
}

// Unredeem reactivates a previously redeemed coupon. The platform keys
// reactivation on the redemption id, which requires a secondary lookup
// over the member's redeemed coupons.
func (s *CouponService) Unredeem(ctx context.Context, email, code string) (json.RawMessage, error) {
	redemptionID, err := s.redemptionID(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, "/v2/coupon/reactivate", map[string]any{"redemptionIds": []int64{redemptionID}})
}

// redemptionID finds the redemption id for a redeemed coupon code.
func (s *CouponService) redemptionID(ctx context.Context, email, code string) (int64, error) {
	payload, err := s.coupons(ctx, email, "Active_Redeemed")
	if err != nil {
		return 0, err
	}

	for _, coupon := range payload {
		if coupon.Code != code {
			continue
		}
		if len(coupon.Redemptions) == 0 {
			break
		}
		return coupon.Redemptions[0].ID, nil
	}
	return 0, apperrors.NewNotFound("redemption", map[string]any{"code": code})
}

func (s *CouponService) coupons(ctx context.Context, email, status string) ([]couponPayload, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("status", status)

	resp, err := s.do(ctx, http.MethodGet, "/v2/customers/coupons?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var decoded couponsResponse
	if err := json.Unmarshal(resp, &decoded); err != nil {
		return nil, apperrors.NewLookupFailure("coupons", err)
	}
	if len(decoded.Entity.Customers) == 0 {
		return nil, nil
	}
	return decoded.Entity.Customers[0].Coupons, nil
}

func (s *CouponService) patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return s.do(ctx, http.MethodPatch, path, body)
}

func (s *CouponService) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token, err := s.tokens.Token(ctx)
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

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("X-CAP-API-OAUTH-TOKEN", token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewDeliveryError("loyalty platform unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewDeliveryError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("coupon request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &UpstreamError{Payload: raw}
	}
	return raw, nil
}
