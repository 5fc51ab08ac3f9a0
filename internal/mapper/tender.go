package mapper

// privateLabelCardType is the card sub-type of the store's private-label
// credit card program.
const privateLabelCardType = "FLEET_REWARDS_CREDIT_CARD"

const tenderStoreCredit = "StoreCredit"

var tenderTypeCodes = map[string]string{
	"CreditCard":     "CREDIT CARD",
	"PLCC":           "PLCC",
	"GiftCard":       "GIFT CARD",
	"Purchase Order": "PURCHASE ORDER",
	"Cash":           "CASH",
	"Debit":          "DEBIT",
	tenderStoreCredit: "PROGRAM REWARD",
	"Voucher":        "VOUCHER",
}

// TenderTypeCode maps a commerce tender type to the loyalty platform's
// tender code. Private-label credit cards map to PLCC. Unrecognized
// tenders fall back to CASH so the ledger stays balanced; that is an
// intentional default, not an error.
func TenderTypeCode(tenderType, cardType string) string {
	if tenderType == "CreditCard" && cardType == privateLabelCardType {
		return "PLCC"
	}
	if code, ok := tenderTypeCodes[tenderType]; ok {
		return code
	}
	return "CASH"
}
