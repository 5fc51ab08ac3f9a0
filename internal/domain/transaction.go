package domain

// TransactionType enumerates the loyalty-platform transaction kinds.
// REGULAR/RETURN apply to known members, NOT_INTERESTED/NI_RETURN to
// customers the platform does not recognize. This gating is a business
// rule, not a default.
type TransactionType string

const (
	TransactionTypeRegular       TransactionType = "REGULAR"
	TransactionTypeNotInterested TransactionType = "NOT_INTERESTED"
	TransactionTypeReturn        TransactionType = "RETURN"
	TransactionTypeNIReturn      TransactionType = "NI_RETURN"
)

// TaxLineItemCode is the item code of the synthetic line that carries
// the combined tax total on a return.
const TaxLineItemCode = "Taxsku"

// LoyaltyTransaction is the wire payload for a sale transaction.
type LoyaltyTransaction struct {
	IdentifierType       string               `json:"identifierType"`
	IdentifierValue      string               `json:"identifierValue"`
	Source               string               `json:"source"`
	AddWithLocalCurrency bool                 `json:"addWithLocalCurrency"`
	Type                 TransactionType      `json:"type"`
	BillAmount           string               `json:"billAmount"`
	BillNumber           string               `json:"billNumber"`
	LineItemsV2          []LoyaltyLineItem    `json:"lineItemsV2"`
	PaymentModes         []LoyaltyPaymentMode `json:"paymentModes"`
	ExtendedFields       map[string]any       `json:"extendedFields"`
}

// LoyaltyLineItem is one line of a sale transaction.
type LoyaltyLineItem struct {
	Description    string         `json:"description"`
	Discount       *float64       `json:"discount"`
	ItemCode       string         `json:"itemCode"`
	Amount         float64        `json:"amount"`
	Qty            string         `json:"qty"`
	Rate           float64        `json:"rate"`
	Serial         int            `json:"serial"`
	Value          string         `json:"value"`
	ExtendedFields map[string]any `json:"extendedFields"`
}

// LoyaltyPaymentMode is one tender entry on a transaction. Values on
// returns are negative.
type LoyaltyPaymentMode struct {
	Mode       string         `json:"mode"`
	Value      float64        `json:"value"`
	Notes      string         `json:"notes,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// LoyaltyReturnTransaction is the wire payload for a return transaction.
// BillNumber and BillingDate reference the original purchase, not the
// return.
type LoyaltyReturnTransaction struct {
	IdentifierType  string                  `json:"identifierType"`
	IdentifierValue string                  `json:"identifierValue"`
	Source          string                  `json:"source"`
	Type            TransactionType         `json:"type"`
	ReturnType      string                  `json:"returnType"`
	BillNumber      string                  `json:"billNumber"`
	Discount        float64                 `json:"discount"`
	BillAmount      float64                 `json:"billAmount"`
	GrossAmount     float64                 `json:"grossAmount"`
	BillingDate     string                  `json:"billingDate"`
	PaymentModes    []LoyaltyPaymentMode    `json:"paymentModes"`
	LineItemsV2     []LoyaltyReturnLineItem `json:"lineItemsV2"`
}

// LoyaltyReturnLineItem is one line of a return transaction.
type LoyaltyReturnLineItem struct {
	Type             string         `json:"type,omitempty"`
	ParentBillNumber string         `json:"parentBillNumber,omitempty"`
	ItemCode         string         `json:"itemCode"`
	Amount           float64        `json:"amount"`
	Rate             float64        `json:"rate"`
	ReturnType       string         `json:"returnType,omitempty"`
	Discount         float64        `json:"discount"`
	Value            float64        `json:"value"`
	Qty              float64        `json:"qty"`
	ExtendedFields   map[string]any `json:"extendedFields,omitempty"`
}
