package domain

import "time"

// CommerceOrder is the synthesized view of a fulfilled order as read from
// the commerce platform. Read-only input to mapping, never mutated.
type CommerceOrder struct {
	ID            string
	ExternalID    string
	Email         string
	SubmittedDate time.Time
	CurrencyCode  string
	Total         float64
	DiscountTotal float64
	Items         []CommerceLineItem
	Payments      []CommercePayment
}

// CommerceLineItem is one ordered line on a commerce order.
type CommerceLineItem struct {
	ProductCode   string
	VariantCode   string
	Name          string
	Quantity      int
	UnitPrice     float64
	ExtendedTotal float64
	ItemTaxTotal  float64
	DiscountTotal float64
}

// CommercePayment is one tender on an order or return. AmountRequested
// and DummyAmount are optional on the wire; nil means the platform did
// not record them.
type CommercePayment struct {
	Type            string
	CardType        string
	AmountRequested *float64
	DummyAmount     *float64
	Interactions    []Interaction
}

// Interaction is a ledger-level record on a payment describing a credit
// or debit event tied to a particular return.
type Interaction struct {
	Type     string
	Amount   float64
	ReturnID string
}

// InteractionTypeCredit marks an interaction that credited value back to
// the customer.
const InteractionTypeCredit = "Credit"
