package paypal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type Payment struct {
	Intent       string        `json:"intent"`
	Payer        Payer         `json:"payer"`
	Transactions []Transaction `json:"transactions"`
}

type Payer struct {
	PaymentMethod      string              `json:"payment_method"`
	FundingInstruments []FundingInstrument `json:"funding_instruments"`
}

type FundingInstrument struct {
	CreditCard *CreditCard `json:"credit_card,omitempty"`
}

type CreditCard struct {
	Number      string `json:"number"`
	Type        string `json:"type"`
	ExpireMonth string `json:"expire_month"`
	ExpireYear  string `json:"expire_year"`
	CVV2        string `json:"cvv2"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

type Transaction struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
}

type Amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type PaymentResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// APIError is a processor rejection. Body holds the error payload exactly as
// the processor sent it.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	DebugID    string
	Body       string
}

func newAPIError(status int, raw []byte) *APIError {
	e := &APIError{StatusCode: status, Body: strings.TrimSpace(string(raw))}
	var payload struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		DebugID string `json:"debug_id"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		e.Name = payload.Name
		e.Message = payload.Message
		e.DebugID = payload.DebugID
	}
	return e
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("paypal: %d %s: %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("paypal: %d %s", e.StatusCode, e.Body)
}

// Rejected reports whether the processor refused the payment itself, as
// opposed to failing to handle it (throttling or a server fault).
func (e *APIError) Rejected() bool {
	return e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Payload is the verbatim processor error, falling back to Error() when the
// processor sent no body.
func (e *APIError) Payload() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Error()
}
