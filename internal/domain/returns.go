package domain

// CommerceReturn is a return aggregate as read from the commerce
// platform.
type CommerceReturn struct {
	ID                   string
	ReturnNumber         int
	ContactEmail         string
	OriginalOrderID      string
	ProductLossTotal     float64
	ProductLossTaxTotal  float64
	ShippingLossTaxTotal float64
	Items                []CommerceReturnItem
	Payments             []CommercePayment
}

// CommerceReturnItem is one returned line on a return.
type CommerceReturnItem struct {
	VariantCode          string
	QuantityReceived     int
	UnitPrice            float64
	ProductLossAmount    float64
	ProductLossTaxAmount float64
}
