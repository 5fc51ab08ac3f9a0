package mapper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

type stubOrderFetcher struct {
	order *domain.CommerceOrder
	err   error
}

func (s stubOrderFetcher) OrderByID(ctx context.Context, orderID string) (*domain.CommerceOrder, error) {
	return s.order, s.err
}

func ptr(v float64) *float64 { return &v }

func testReturn() *domain.CommerceReturn {
	return &domain.CommerceReturn{
		ID:                   "R1",
		ReturnNumber:         7001,
		ContactEmail:         "a@b.com",
		OriginalOrderID:      "O1",
		ProductLossTotal:     45,
		ProductLossTaxTotal:  3.5,
		ShippingLossTaxTotal: 1.5,
		Items: []domain.CommerceReturnItem{
			{VariantCode: "SKU1-V", QuantityReceived: 1, UnitPrice: 45, ProductLossAmount: 45, ProductLossTaxAmount: 3.5},
		},
	}
}

func newTestReturnMapper(lookup stubLookup, orders stubOrderFetcher) *ReturnMapper {
	return NewReturnMapper(lookup, orders, zap.NewNop())
}

func TestMapReturnKnownCustomer(t *testing.T) {
	original := &domain.CommerceOrder{
		ID:            "O1",
		ExternalID:    "EXT-9",
		SubmittedDate: time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC),
	}
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: original})

	txn, err := m.Map(context.Background(), testReturn())
	require.NoError(t, err)

	require.Equal(t, domain.TransactionTypeReturn, txn.Type)
	require.Equal(t, "LINE_ITEM", txn.ReturnType)
	require.Equal(t, "7001", txn.BillNumber)
	require.Equal(t, 45.0, txn.BillAmount)
	require.Equal(t, 45.0, txn.GrossAmount)
	require.Equal(t, "2024-03-20T10:30:00Z", txn.BillingDate)
	require.Equal(t, "EXT-9", txn.LineItemsV2[0].ParentBillNumber)
}

func TestMapReturnUnknownCustomer(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: false}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	txn, err := m.Map(context.Background(), testReturn())
	require.NoError(t, err)
	require.Equal(t, domain.TransactionTypeNIReturn, txn.Type)
}

func TestMapReturnTaxLineAlwaysLast(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	txn, err := m.Map(context.Background(), testReturn())
	require.NoError(t, err)

	require.Len(t, txn.LineItemsV2, 2)
	taxLine := txn.LineItemsV2[len(txn.LineItemsV2)-1]
	require.Equal(t, domain.TaxLineItemCode, taxLine.ItemCode)
	require.Equal(t, 5.0, taxLine.Amount)
	require.Equal(t, 5.0, taxLine.Rate)
	require.Equal(t, 1.0, taxLine.Qty)
}

func TestMapReturnTaxLineOnEmptyItems(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Items = nil
	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)

	require.Len(t, txn.LineItemsV2, 1)
	require.Equal(t, domain.TaxLineItemCode, txn.LineItemsV2[0].ItemCode)
}

func TestMapReturnBackfillFailureDegrades(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{err: errors.New("order service down")})

	before := time.Now().UTC().Add(-time.Second)
	txn, err := m.Map(context.Background(), testReturn())
	require.NoError(t, err)

	require.Empty(t, txn.LineItemsV2[0].ParentBillNumber)
	billingDate, parseErr := time.Parse(billingDateLayout, txn.BillingDate)
	require.NoError(t, parseErr)
	require.True(t, billingDate.After(before))
}

func TestMapReturnMissingReturn(t *testing.T) {
	m := newTestReturnMapper(stubLookup{}, stubOrderFetcher{})

	_, err := m.Map(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestMapReturnMissingEmail(t *testing.T) {
	m := newTestReturnMapper(stubLookup{}, stubOrderFetcher{})

	ret := testReturn()
	ret.ContactEmail = ""
	_, err := m.Map(context.Background(), ret)
	require.Error(t, err)
	require.Equal(t, "MISSING_REQUIRED_FIELD", apperrors.ToDomainError(err).Code)
}

func TestMapReturnStoreCreditEqualDummyAndActual(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Payments = []domain.CommercePayment{{
		Type:            "StoreCredit",
		DummyAmount:     ptr(15),
		AmountRequested: ptr(15),
		Interactions: []domain.Interaction{
			{Type: domain.InteractionTypeCredit, Amount: 15, ReturnID: "R1"},
		},
	}}

	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)

	require.Len(t, txn.PaymentModes, 1)
	require.Equal(t, "PROGRAM REWARD", txn.PaymentModes[0].Mode)
	require.Equal(t, -15.0, txn.PaymentModes[0].Value)
}

func TestMapReturnStoreCreditDummyOnly(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Payments = []domain.CommercePayment{{
		Type:        "StoreCredit",
		DummyAmount: ptr(20),
		Interactions: []domain.Interaction{
			{Type: domain.InteractionTypeCredit, Amount: 20, ReturnID: "R1"},
			{Type: domain.InteractionTypeCredit, Amount: 8, ReturnID: "R1"},
		},
	}}

	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)
	require.Equal(t, -20.0, txn.PaymentModes[0].Value)
}

func TestMapReturnStoreCreditMismatchedAmountsMatchActual(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Payments = []domain.CommercePayment{{
		Type:            "StoreCredit",
		DummyAmount:     ptr(1),
		AmountRequested: ptr(12),
		Interactions: []domain.Interaction{
			{Type: domain.InteractionTypeCredit, Amount: 1, ReturnID: "R1"},
			{Type: domain.InteractionTypeCredit, Amount: 12, ReturnID: "R1"},
		},
	}}

	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)
	require.Equal(t, -12.0, txn.PaymentModes[0].Value)
}

func TestMapReturnCreditCardSumsCreditsForThisReturn(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Payments = []domain.CommercePayment{{
		Type:            "CreditCard",
		AmountRequested: ptr(100),
		Interactions: []domain.Interaction{
			{Type: domain.InteractionTypeCredit, Amount: 10, ReturnID: "R1"},
			{Type: domain.InteractionTypeCredit, Amount: 5, ReturnID: "R1"},
			{Type: domain.InteractionTypeCredit, Amount: 99, ReturnID: "R2"},
			{Type: "Debit", Amount: 100, ReturnID: "R1"},
		},
	}}

	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)

	require.Equal(t, "CREDIT CARD", txn.PaymentModes[0].Mode)
	require.Equal(t, -15.0, txn.PaymentModes[0].Value)
}

func TestMapReturnPaymentWithoutCreditsContributesZero(t *testing.T) {
	m := newTestReturnMapper(stubLookup{exists: true}, stubOrderFetcher{order: &domain.CommerceOrder{}})

	ret := testReturn()
	ret.Payments = []domain.CommercePayment{{
		Type:            "GiftCard",
		AmountRequested: ptr(30),
	}}

	txn, err := m.Map(context.Background(), ret)
	require.NoError(t, err)

	require.Equal(t, "GIFT CARD", txn.PaymentModes[0].Mode)
	require.Equal(t, 0.0, txn.PaymentModes[0].Value)
}
