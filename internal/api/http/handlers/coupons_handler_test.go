package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/loyalty-bridge/internal/api/http"
	"github.com/spec-kit/loyalty-bridge/internal/api/http/handlers"
	"github.com/spec-kit/loyalty-bridge/internal/domain"
	"github.com/spec-kit/loyalty-bridge/internal/loyalty"
)

type stubCouponAPI struct {
	coupons []domain.Coupon
	result  json.RawMessage
	err     error

	lastEmail string
	lastCode  string
}

func (s *stubCouponAPI) ActiveCoupons(ctx context.Context, email string) ([]domain.Coupon, error) {
	s.lastEmail = email
	return s.coupons, s.err
}

func (s *stubCouponAPI) Redeem(ctx context.Context, code string) (json.RawMessage, error) {
	s.lastCode = code
	return s.result, s.err
}

func (s *stubCouponAPI) Unredeem(ctx context.Context, email, code string) (json.RawMessage, error) {
	s.lastEmail = email
	s.lastCode = code
	return s.result, s.err
}

func newTestApp(coupons handlers.CouponAPI) *fiber.App {
	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:  handlers.NewHealthHandler("loyalty-bridge", "test", false),
		Coupons: handlers.NewCouponsHandler(coupons),
	})
	return app
}

func TestActiveCouponsEndpoint(t *testing.T) {
	api := &stubCouponAPI{coupons: []domain.Coupon{
		{Code: "RWD-100", CurrencyCode: "USD", InitialBalance: 5, CurrentBalance: 5, IsEnabled: true},
	}}
	app := newTestApp(api)

	resp, err := app.Test(httptest.NewRequest("GET", "/coupons/active?email=member%40example.com", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "member@example.com", api.lastEmail)

	body, _ := io.ReadAll(resp.Body)
	var decoded struct {
		Data []domain.Coupon `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.Data, 1)
	require.Equal(t, "RWD-100", decoded.Data[0].Code)
}

func TestActiveCouponsRequiresEmail(t *testing.T) {
	app := newTestApp(&stubCouponAPI{})

	resp, err := app.Test(httptest.NewRequest("GET", "/coupons/active", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "VALIDATION_FAILED")
}

func TestRedeemEndpoint(t *testing.T) {
	api := &stubCouponAPI{result: json.RawMessage(`{"success":true}`)}
	app := newTestApp(api)

	resp, err := app.Test(httptest.NewRequest("POST", "/coupons/RWD-100/redeem", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "RWD-100", api.lastCode)

	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"data":{"success":true}}`, string(body))
}

func TestUnredeemRequiresEmail(t *testing.T) {
	app := newTestApp(&stubCouponAPI{})

	resp, err := app.Test(httptest.NewRequest("POST", "/coupons/RWD-100/unredeem", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpstreamRejectionReturnedInBand(t *testing.T) {
	api := &stubCouponAPI{err: &loyalty.UpstreamError{
		Payload: json.RawMessage(`{"errors":[{"message":"coupon expired"}]}`),
	}}
	app := newTestApp(api)

	resp, err := app.Test(httptest.NewRequest("POST", "/coupons/RWD-100/redeem", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"error":{"errors":[{"message":"coupon expired"}]}}`, string(body))
}

func TestUnexpectedFailureGoesToErrorMiddleware(t *testing.T) {
	api := &stubCouponAPI{err: errors.New("connection reset")}
	app := newTestApp(api)

	resp, err := app.Test(httptest.NewRequest("POST", "/coupons/RWD-100/redeem", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(&stubCouponAPI{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `"status":"alive"`)
}
