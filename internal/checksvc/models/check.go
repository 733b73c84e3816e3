package models

type BinInfo struct {
	Bank    string `json:"bank"`
	Country string `json:"country"`
	Brand   string `json:"brand"`
	Type    string `json:"type"`
	Error   string `json:"error,omitempty"`
}

// CheckResult is the answer to a single card check.
type CheckResult struct {
	LuhnValid        bool    `json:"luhn_valid"`
	CardType         string  `json:"card_type"`
	MII              string  `json:"mii"`
	BinInfo          BinInfo `json:"bin_info"`
	CanPurchase      bool    `json:"can_purchase"`
	TransactionError *string `json:"transaction_error"`
}
