package commerce

import (
	"time"

	"github.com/spec-kit/loyalty-bridge/internal/domain"
)

// Wire shapes for the commerce REST API. Optional numeric fields are
// pointers so absence survives decoding; mapping applies the
// zero-default rule downstream.

type orderCollection struct {
	Items      []orderPayload `json:"items"`
	TotalCount int            `json:"totalCount"`
}

type orderPayload struct {
	ID            string           `json:"id"`
	ExternalID    string           `json:"externalId"`
	Email         string           `json:"email"`
	SubmittedDate time.Time        `json:"submittedDate"`
	CurrencyCode  string           `json:"currencyCode"`
	Total         float64          `json:"total"`
	DiscountTotal float64          `json:"discountTotal"`
	Items         []orderItem      `json:"items"`
	Payments      []paymentPayload `json:"payments"`
}

type orderItem struct {
	Product       productPayload `json:"product"`
	Quantity      int            `json:"quantity"`
	Total         float64        `json:"total"`
	UnitPrice     unitPrice      `json:"unitPrice"`
	ItemTaxTotal  float64        `json:"itemTaxTotal"`
	DiscountTotal float64        `json:"discountTotal"`
}

type productPayload struct {
	Name                 string       `json:"name"`
	ProductCode          string       `json:"productCode"`
	VariationProductCode string       `json:"variationProductCode"`
	Price                productPrice `json:"price"`
}

type productPrice struct {
	Price float64 `json:"price"`
}

type unitPrice struct {
	SaleAmount float64 `json:"saleAmount"`
}

type paymentPayload struct {
	PaymentType     string               `json:"paymentType"`
	AmountRequested *float64             `json:"amountRequested"`
	BillingInfo     billingInfoPayload   `json:"billingInfo"`
	Data            paymentData          `json:"data"`
	Interactions    []interactionPayload `json:"interactions"`
}

type billingInfoPayload struct {
	Card cardPayload `json:"card"`
}

type cardPayload struct {
	PaymentOrCardType string `json:"paymentOrCardType"`
}

type paymentData struct {
	DummyAmount *float64 `json:"dummyAmount"`
}

type interactionPayload struct {
	InteractionType string  `json:"interactionType"`
	Amount          float64 `json:"amount"`
	ReturnID        string  `json:"returnId"`
}

type returnCollection struct {
	Items      []returnPayload `json:"items"`
	TotalCount int             `json:"totalCount"`
}

type returnPayload struct {
	ID                   string              `json:"id"`
	ReturnNumber         int                 `json:"returnNumber"`
	Contact              contactPayload      `json:"contact"`
	OriginalOrderID      string              `json:"originalOrderId"`
	ProductLossTotal     float64             `json:"productLossTotal"`
	ProductLossTaxTotal  float64             `json:"productLossTaxTotal"`
	ShippingLossTaxTotal float64             `json:"shippingLossTaxTotal"`
	Items                []returnItemPayload `json:"items"`
	Payments             []paymentPayload    `json:"payments"`
}

type contactPayload struct {
	Email string `json:"email"`
}

type returnItemPayload struct {
	Product              productPayload `json:"product"`
	QuantityReceived     int            `json:"quantityReceived"`
	ProductLossAmount    float64        `json:"productLossAmount"`
	ProductLossTaxAmount float64        `json:"productLossTaxAmount"`
}

func (p orderPayload) toDomain() domain.CommerceOrder {
	items := make([]domain.CommerceLineItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, domain.CommerceLineItem{
			ProductCode:   item.Product.ProductCode,
			VariantCode:   item.Product.VariationProductCode,
			Name:          item.Product.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.Product.Price.Price,
			ExtendedTotal: item.Total,
			ItemTaxTotal:  item.ItemTaxTotal,
			DiscountTotal: item.DiscountTotal,
		})
	}

	return domain.CommerceOrder{
		ID:            p.ID,
		ExternalID:    p.ExternalID,
		Email:         p.Email,
		SubmittedDate: p.SubmittedDate,
		CurrencyCode:  p.CurrencyCode,
		Total:         p.Total,
		DiscountTotal: p.DiscountTotal,
		Items:         items,
		Payments:      toDomainPayments(p.Payments),
	}
}

func (p returnPayload) toDomain() domain.CommerceReturn {
	items := make([]domain.CommerceReturnItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, domain.CommerceReturnItem{
			VariantCode:          item.Product.VariationProductCode,
			QuantityReceived:     item.QuantityReceived,
			UnitPrice:            item.Product.Price.Price,
			ProductLossAmount:    item.ProductLossAmount,
			ProductLossTaxAmount: item.ProductLossTaxAmount,
		})
	}

	return domain.CommerceReturn{
		ID:                   p.ID,
		ReturnNumber:         p.ReturnNumber,
		ContactEmail:         p.Contact.Email,
		OriginalOrderID:      p.OriginalOrderID,
		ProductLossTotal:     p.ProductLossTotal,
		ProductLossTaxTotal:  p.ProductLossTaxTotal,
		ShippingLossTaxTotal: p.ShippingLossTaxTotal,
		Items:                items,
		Payments:             toDomainPayments(p.Payments),
	}
}

func toDomainPayments(payments []paymentPayload) []domain.CommercePayment {
	out := make([]domain.CommercePayment, 0, len(payments))
	for _, payment := range payments {
		interactions := make([]domain.Interaction, 0, len(payment.Interactions))
		for _, interaction := range payment.Interactions {
			interactions = append(interactions, domain.Interaction{
				Type:     interaction.InteractionType,
				Amount:   interaction.Amount,
				ReturnID: interaction.ReturnID,
			})
		}
		out = append(out, domain.CommercePayment{
			Type:            payment.PaymentType,
			CardType:        payment.BillingInfo.Card.PaymentOrCardType,
			AmountRequested: payment.AmountRequested,
			DummyAmount:     payment.Data.DummyAmount,
			Interactions:    interactions,
		})
	}
	return out
}
