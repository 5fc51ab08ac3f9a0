package domain

// Coupon is the commerce-facing shape of a loyalty reward coupon.
type Coupon struct {
	Code             string  `json:"code"`
	CurrencyCode     string  `json:"currencyCode"`
	CustomCreditType string  `json:"customCreditType"`
	CreditType       string  `json:"creditType"`
	InitialBalance   float64 `json:"initialBalance"`
	CurrentBalance   float64 `json:"currentBalance"`
	IsEnabled        bool    `json:"isEnabled"`
	ActivationDate   string  `json:"activationDate"`
}
