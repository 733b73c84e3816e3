package models

import "strings"

// CardRecord is one input row of a batch file. Fields are kept as read.
type CardRecord struct {
	CardNumber string `json:"card_number"`
	ExpMonth   string `json:"exp_month"`
	ExpYear    string `json:"exp_year"`
	CVC        string `json:"cvc"`

	// ReadError is set when the row could not be parsed; the fields are empty.
	ReadError string `json:"-"`
}

// Missing lists the required columns left empty in the row.
func (r CardRecord) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"card_number", r.CardNumber},
		{"exp_month", r.ExpMonth},
		{"exp_year", r.ExpYear},
		{"cvc", r.CVC},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// CardReport is one output row of a batch run. Every report carries the same
// field set whichever branch produced it.
type CardReport struct {
	CardRecord
	CardType         string `json:"card_type"`
	MII              string `json:"mii"`
	Bank             string `json:"bank"`
	Country          string `json:"country"`
	Brand            string `json:"brand"`
	Type             string `json:"type"`
	CanPurchase      bool   `json:"can_purchase"`
	TransactionError string `json:"transaction_error"`
}
