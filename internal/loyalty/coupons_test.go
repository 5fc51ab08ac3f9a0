package loyalty

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
)

func newTestCouponService(baseURL string) *CouponService {
	return NewCouponService(config.LoyaltyConfig{BaseURL: baseURL}, staticTokens{}, zap.NewNop())
}

const couponListBody = `{
	"entity": {
		"customers": [{
			"coupons": [
				{"code": "RWD-100", "discountValue": 5, "createdDate": "2024-03-01T08:00:00Z", "redemptions": []},
				{"code": "RWD-101", "discountValue": 10, "createdDate": "2024-03-05T08:00:00Z", "redemptions": [{"id": 421}]}
			]
		}]
	}
}`

func TestActiveCoupons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/customers/coupons", r.URL.Path)
		require.Equal(t, "Active_Unredeemed", r.URL.Query().Get("status"))
		require.Equal(t, "member@example.com", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte(couponListBody))
	}))
	defer server.Close()

	coupons, err := newTestCouponService(server.URL).ActiveCoupons(context.Background(), "member@example.com")
	require.NoError(t, err)
	require.Len(t, coupons, 2)

	require.Equal(t, "RWD-100", coupons[0].Code)
	require.Equal(t, "USD", coupons[0].CurrencyCode)
	require.Equal(t, "LoyaltyRewards", coupons[0].CustomCreditType)
	require.Equal(t, "Custom", coupons[0].CreditType)
	require.Equal(t, 5.0, coupons[0].InitialBalance)
	require.Equal(t, 5.0, coupons[0].CurrentBalance)
	require.True(t, coupons[0].IsEnabled)
	require.Equal(t, "2024-03-01T08:00:00Z", coupons[0].ActivationDate)
	require.Equal(t, 10.0, coupons[1].InitialBalance)
}

func TestActiveCouponsNoCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entity": {"customers": []}}`))
	}))
	defer server.Close()

	coupons, err := newTestCouponService(server.URL).ActiveCoupons(context.Background(), "member@example.com")
	require.NoError(t, err)
	require.Empty(t, coupons)
}

func TestRedeemPassesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v2/coupon/redeem", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))
		require.Equal(t, "RWD-100", decoded["code"])

		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	result, err := newTestCouponService(server.URL).Redeem(context.Background(), "RWD-100")
	require.NoError(t, err)
	require.JSONEq(t, `{"success": true}`, string(result))
}

func TestUnredeemResolvesRedemptionID(t *testing.T) {
	var reactivateBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/customers/coupons":
			require.Equal(t, "Active_Redeemed", r.URL.Query().Get("status"))
			_, _ = w.Write([]byte(couponListBody))
		case "/v2/coupon/reactivate":
			require.Equal(t, http.MethodPatch, r.Method)
			reactivateBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	_, err := newTestCouponService(server.URL).Unredeem(context.Background(), "member@example.com", "RWD-101")
	require.NoError(t, err)
	require.JSONEq(t, `{"redemptionIds": [421]}`, string(reactivateBody))
}

func TestUnredeemUnknownCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(couponListBody))
	}))
	defer server.Close()

	_, err := newTestCouponService(server.URL).Unredeem(context.Background(), "member@example.com", "RWD-999")
	require.Error(t, err)
}

func TestUpstreamRejectionSurfacesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"coupon expired"}]}`))
	}))
	defer server.Close()

	_, err := newTestCouponService(server.URL).Redeem(context.Background(), "RWD-100")
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.JSONEq(t, `{"errors":[{"message":"coupon expired"}]}`, string(upstream.Payload))
}
