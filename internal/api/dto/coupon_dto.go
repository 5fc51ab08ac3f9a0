package dto

import (
	"encoding/json"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
)

// CouponListResponse wraps the commerce-facing coupon list.
type CouponListResponse struct {
	Data []domain.Coupon `json:"data"`
}

// RedemptionResponse wraps the loyalty platform's redeem/unredeem
// result, passed through verbatim.
type RedemptionResponse struct {
	Data json.RawMessage `json:"data"`
}
