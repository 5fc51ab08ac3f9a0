package mapper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// CustomerLookup resolves whether an identifier is already known to the
// loyalty platform.
type CustomerLookup interface {
	CustomerExists(ctx context.Context, email string) (bool, error)
}

// OrderMapper converts a fulfilled commerce order into a loyalty sale
// transaction. Pure apart from the one customer-exists lookup.
type OrderMapper struct {
	customers CustomerLookup
	logger    *zap.Logger
}

// NewOrderMapper constructs the mapper.
func NewOrderMapper(customers CustomerLookup, logger *zap.Logger) *OrderMapper {
	return &OrderMapper{customers: customers, logger: logger}
}

// Map builds the transaction payload for one order and its line items.
// A missing order or email is a named failure; missing numeric fields
// default to zero. The transaction type is REGULAR only when the
// customer is already known to the loyalty platform.
func (m *OrderMapper) Map(ctx context.Context, order *domain.CommerceOrder, items []domain.CommerceLineItem) (*domain.LoyaltyTransaction, error) {
	if order == nil {
		return nil, apperrors.NewNotFound("order", nil)
	}
	if order.Email == "" {
		return nil, apperrors.NewMissingField("customer email")
	}

	transactionType := domain.TransactionTypeNotInterested
	if m.customerExists(ctx, order.Email) {
		transactionType = domain.TransactionTypeRegular
	}

	billNumber := order.ExternalID
	if billNumber == "" {
		billNumber = order.ID
	}

	orderDate := order.SubmittedDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &domain.LoyaltyTransaction{
		IdentifierType:       "email",
		IdentifierValue:      order.Email,
		Source:               "Instore",
		AddWithLocalCurrency: false,
		Type:                 transactionType,
		BillAmount:           formatAmount(order.Total),
		BillNumber:           billNumber,
		LineItemsV2:          mapLineItems(items),
		PaymentModes:         mapPaymentModes(order),
		ExtendedFields: map[string]any{
			"orderSource": "Kibo Commerce",
			"orderDate":   orderDate.UTC().Format(time.RFC3339),
		},
	}, nil
}

// customerExists degrades to "not registered" when the lookup fails. The
// fail-safe bias is toward NOT_INTERESTED, never toward fabricating
// membership.
func (m *OrderMapper) customerExists(ctx context.Context, email string) bool {
	exists, err := m.customers.CustomerExists(ctx, email)
	if err != nil {
		m.logger.Warn("customer lookup failed, treating customer as not registered",
			zap.String("email", email),
			zap.Error(err))
		return false
	}
	return exists
}

func mapLineItems(items []domain.CommerceLineItem) []domain.LoyaltyLineItem {
	lineItems := make([]domain.LoyaltyLineItem, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		lineItems = append(lineItems, domain.LoyaltyLineItem{
			Description: item.Name,
			Discount:    nil,
			ItemCode:    item.ProductCode,
			Amount:      item.ExtendedTotal,
			Qty:         strconv.Itoa(qty),
			Rate:        item.UnitPrice,
			Serial:      1,
			Value:       formatAmount(item.ExtendedTotal),
			ExtendedFields: map[string]any{
				"sku":        item.VariantCode,
				"vat_amount": item.ItemTaxTotal,
			},
		})
	}
	return lineItems
}

func mapPaymentModes(order *domain.CommerceOrder) []domain.LoyaltyPaymentMode {
	if len(order.Payments) == 0 {
		// No recorded tender still has to balance the bill.
		return []domain.LoyaltyPaymentMode{{
			Mode:  "CASH",
			Value: order.Total,
			Notes: fmt.Sprintf("Payment for order %s", order.ID),
		}}
	}

	modes := make([]domain.LoyaltyPaymentMode, 0, len(order.Payments))
	for _, payment := range order.Payments {
		var value float64
		if payment.AmountRequested != nil {
			value = *payment.AmountRequested
		}
		modes = append(modes, domain.LoyaltyPaymentMode{
			Mode:  TenderTypeCode(payment.Type, payment.CardType),
			Value: value,
			Notes: fmt.Sprintf("Payment for order %s", order.ID),
		})
	}
	return modes
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
