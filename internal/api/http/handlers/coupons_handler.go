package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loyalty-bridge/internal/api/dto"
	"github.com/spec-kit/loyalty-bridge/internal/domain"
	"github.com/spec-kit/loyalty-bridge/internal/loyalty"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// CouponAPI is the slice of the coupon facade the handlers need.
type CouponAPI interface {
	ActiveCoupons(ctx context.Context, email string) ([]domain.Coupon, error)
	Redeem(ctx context.Context, code string) (json.RawMessage, error)
	Unredeem(ctx context.Context, email, code string) (json.RawMessage, error)
}

// CouponsHandler exposes the coupon lookup/redemption endpoints.
type CouponsHandler struct {
	coupons CouponAPI
}

// NewCouponsHandler constructs handler.
func NewCouponsHandler(coupons CouponAPI) *CouponsHandler {
	return &CouponsHandler{coupons: coupons}
}

// Active handles GET /coupons/active.
func (h *CouponsHandler) Active(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}

	coupons, err := h.coupons.ActiveCoupons(c.UserContext(), email)
	if err != nil {
		return respondUpstreamOr(c, err)
	}
	return c.JSON(dto.CouponListResponse{Data: coupons})
}

// Redeem handles POST /coupons/:code/redeem.
func (h *CouponsHandler) Redeem(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return apperrors.NewValidationError("coupon code is required", nil)
	}

	result, err := h.coupons.Redeem(c.UserContext(), code)
	if err != nil {
		return respondUpstreamOr(c, err)
	}
	return c.JSON(dto.RedemptionResponse{Data: result})
}

// Unredeem handles POST /coupons/:code/unredeem.
func (h *CouponsHandler) Unredeem(c *fiber.Ctx) error {
	code := c.Params("code")
	email := c.Query("email")
	if code == "" || email == "" {
		return apperrors.NewValidationError("coupon code and email are required", nil)
	}

	result, err := h.coupons.Unredeem(c.UserContext(), email, code)
	if err != nil {
		return respondUpstreamOr(c, err)
	}
	return c.JSON(dto.RedemptionResponse{Data: result})
}

// respondUpstreamOr surfaces loyalty-platform rejections in-band as an
// error object rather than a 5xx; anything else goes to the error
// middleware.
func respondUpstreamOr(c *fiber.Ctx, err error) error {
	var upstream *loyalty.UpstreamError
	if errors.As(err, &upstream) {
		return c.JSON(fiber.Map{"error": upstream.Payload})
	}
	return err
}
