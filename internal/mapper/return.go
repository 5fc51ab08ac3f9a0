package mapper

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
	apperrors "github.com/spec-kit/loyalty-bridge/pkg/util"
)

// OrderFetcher looks up the original order referenced by a return.
type OrderFetcher interface {
	OrderByID(ctx context.Context, orderID string) (*domain.CommerceOrder, error)
}

// billingDateLayout is the second-precision UTC format the loyalty
// platform expects for billing dates.
const billingDateLayout = "2006-01-02T15:04:05Z"

// ReturnMapper converts a fully-refunded commerce return into a loyalty
// return transaction. The bill number and billing date come from the
// original purchase, which requires a secondary order fetch.
type ReturnMapper struct {
	customers CustomerLookup
	orders    OrderFetcher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReturnMapper constructs the mapper.
func NewReturnMapper(customers CustomerLookup, orders OrderFetcher, logger *zap.Logger) *ReturnMapper {
	return &ReturnMapper{customers: customers, orders: orders, logger: logger, now: time.Now}
}

// Map builds the return payload for one return aggregate. A missing
// return or contact email is a named failure. A failed original-order
// backfill degrades to an empty bill number and the current time instead
// of aborting the mapping.
func (m *ReturnMapper) Map(ctx context.Context, ret *domain.CommerceReturn) (*domain.LoyaltyReturnTransaction, error) {
	if ret == nil {
		return nil, apperrors.NewNotFound("return", nil)
	}
	if ret.ContactEmail == "" {
		return nil, apperrors.NewMissingField("contact email")
	}

	transactionType := domain.TransactionTypeNIReturn
	if m.customerExists(ctx, ret.ContactEmail) {
		transactionType = domain.TransactionTypeReturn
	}

	parentBillNumber, billingDate := m.originalBillRef(ctx, ret)

	return &domain.LoyaltyReturnTransaction{
		IdentifierType:  "email",
		IdentifierValue: ret.ContactEmail,
		Source:          "INSTORE",
		Type:            transactionType,
		ReturnType:      "LINE_ITEM",
		BillNumber:      strconv.Itoa(ret.ReturnNumber),
		Discount:        0,
		BillAmount:      ret.ProductLossTotal,
		GrossAmount:     ret.ProductLossTotal,
		BillingDate:     billingDate,
		PaymentModes:    mapReturnPaymentModes(ret),
		LineItemsV2:     mapReturnLineItems(ret, parentBillNumber),
	}, nil
}

func (m *ReturnMapper) customerExists(ctx context.Context, email string) bool {
	exists, err := m.customers.CustomerExists(ctx, email)
	if err != nil {
		m.logger.Warn("customer lookup failed, treating customer as not registered",
			zap.String("email", email),
			zap.Error(err))
		return false
	}
	return exists
}

// originalBillRef backfills the parent bill number and billing date from
// the original order. Partial degradation on fetch failure: empty bill
// number, current-time billing date.
func (m *ReturnMapper) originalBillRef(ctx context.Context, ret *domain.CommerceReturn) (string, string) {
	billingDate := m.now().UTC().Format(billingDateLayout)
	if ret.OriginalOrderID == "" {
		return "", billingDate
	}

	order, err := m.orders.OrderByID(ctx, ret.OriginalOrderID)
	if err != nil || order == nil {
		m.logger.Warn("original order fetch failed, proceeding without bill reference",
			zap.String("return_id", ret.ID),
			zap.String("original_order_id", ret.OriginalOrderID),
			zap.Error(err))
		return "", billingDate
	}

	if !order.SubmittedDate.IsZero() {
		billingDate = order.SubmittedDate.UTC().Format(billingDateLayout)
	}
	return order.ExternalID, billingDate
}

// mapReturnLineItems maps each returned item and appends the synthetic
// tax line. The tax line is required and always last.
func mapReturnLineItems(ret *domain.CommerceReturn, parentBillNumber string) []domain.LoyaltyReturnLineItem {
	lineItems := make([]domain.LoyaltyReturnLineItem, 0, len(ret.Items)+1)
	for _, item := range ret.Items {
		qty := item.QuantityReceived
		if qty == 0 {
			qty = 1
		}
		lineItems = append(lineItems, domain.LoyaltyReturnLineItem{
			Type:             "RETURN",
			ParentBillNumber: parentBillNumber,
			ItemCode:         item.VariantCode,
			Amount:           item.ProductLossAmount,
			Rate:             item.UnitPrice,
			ReturnType:       "LINE_ITEM",
			Discount:         0,
			Value:            item.ProductLossAmount,
			Qty:              float64(qty),
			ExtendedFields: map[string]any{
				"vat_amount":           item.ProductLossTaxAmount,
				"service_tax_amount":   0,
				"amount_including_tax": item.UnitPrice + item.ProductLossTaxAmount,
				"amount_excluding_tax": item.UnitPrice,
			},
		})
	}

	taxTotal := ret.ProductLossTaxTotal + ret.ShippingLossTaxTotal
	return append(lineItems, domain.LoyaltyReturnLineItem{
		ItemCode: domain.TaxLineItemCode,
		Amount:   taxTotal,
		Rate:     taxTotal,
		Qty:      1,
		Value:    taxTotal,
		Discount: 0,
	})
}

// mapReturnPaymentModes nets each tender down to what was actually
// credited back for this return and negates it.
func mapReturnPaymentModes(ret *domain.CommerceReturn) []domain.LoyaltyPaymentMode {
	modes := make([]domain.LoyaltyPaymentMode, 0, len(ret.Payments))
	for _, payment := range ret.Payments {
		modes = append(modes, domain.LoyaltyPaymentMode{
			Mode:  TenderTypeCode(payment.Type, payment.CardType),
			Value: -creditedAmount(payment, ret.ID),
		})
	}
	return modes
}

// creditedAmount resolves how much of a tender was credited back for
// this specific return. The face amount of the payment is irrelevant;
// only Credit interactions tied to this return count.
func creditedAmount(payment domain.CommercePayment, returnID string) float64 {
	var credits []domain.Interaction
	for _, interaction := range payment.Interactions {
		if interaction.Type == domain.InteractionTypeCredit && interaction.ReturnID == returnID {
			credits = append(credits, interaction)
		}
	}
	if len(credits) == 0 {
		return 0
	}

	if payment.Type != tenderStoreCredit {
		var total float64
		for _, credit := range credits {
			total += credit.Amount
		}
		return total
	}

	target, ok := storeCreditTarget(payment)
	if !ok {
		return 0
	}
	for _, credit := range credits {
		if credit.Amount == target {
			return credit.Amount
		}
	}
	return 0
}

// storeCreditTarget picks which amount a store-credit interaction must
// match. Store-credit payments carry a placeholder "dummy" authorization
// amount alongside the actual one, and either may be absent.
func storeCreditTarget(payment domain.CommercePayment) (float64, bool) {
	switch {
	case payment.DummyAmount != nil && payment.AmountRequested == nil:
		// Only the placeholder was recorded.
		return *payment.DummyAmount, true
	case payment.DummyAmount != nil && payment.AmountRequested != nil && *payment.DummyAmount == *payment.AmountRequested:
		// Placeholder and actual agree; a single interaction matches.
		return *payment.AmountRequested, true
	case payment.DummyAmount != nil && payment.AmountRequested != nil:
		// Amounts disagree. Match on the actual amount and take the
		// first matching interaction.
		return *payment.AmountRequested, true
	case payment.AmountRequested != nil:
		return *payment.AmountRequested, true
	default:
		return 0, false
	}
}
