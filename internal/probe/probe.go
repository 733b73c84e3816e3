package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/paypal"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultCurrency    = "USD"
	DefaultDescription = "This is a test transaction."
)

// DefaultAmount is the token authorization total.
var DefaultAmount = decimal.RequireFromString("1.00")

type Processor interface {
	CreatePayment(ctx context.Context, p paypal.Payment) (*paypal.PaymentResponse, error)
}

type BinResolver interface {
	Resolve(ctx context.Context, bin string) binlist.Info
}

type Outcome int

const (
	// OutcomeApproved: the processor accepted the authorization.
	OutcomeApproved Outcome = iota
	// OutcomeDeclined: the processor answered with a rejection.
	OutcomeDeclined
	// OutcomeFailed: no processor verdict (transport, auth or local input).
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeDeclined:
		return "declined"
	default:
		return "failed"
	}
}

// Result is the outcome of one probe. BinInfo is set only when approved.
type Result struct {
	Outcome Outcome
	BinInfo *binlist.Info
	Error   string
}

func (r Result) CanPurchase() bool { return r.Outcome == OutcomeApproved }

type Details struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

type Probe struct {
	processor   Processor
	bins        BinResolver
	amount      decimal.Decimal
	currency    string
	description string
}

type Option func(*Probe)

func WithAmount(amount decimal.Decimal, currency string) Option {
	return func(p *Probe) {
		p.amount = amount
		p.currency = currency
	}
}

func New(processor Processor, bins BinResolver, opts ...Option) *Probe {
	p := &Probe{
		processor:   processor,
		bins:        bins,
		amount:      DefaultAmount,
		currency:    DefaultCurrency,
		description: DefaultDescription,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe attempts a minimal authorization with the card. It never returns an
// error; every failure is reported in the Result.
func (p *Probe) Probe(ctx context.Context, d Details) Result {
	class, err := card.Classify(d.Number)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Error: err.Error()}
	}

	_, err = p.processor.CreatePayment(ctx, p.payment(d, class.Brand))
	if err != nil {
		var apiErr *paypal.APIError
		if errors.As(err, &apiErr) && apiErr.Rejected() {
			log.WithFields(log.Fields{
				"card":   card.Mask(d.Number),
				"status": apiErr.StatusCode,
				"name":   apiErr.Name,
			}).Info("authorization declined")
			return Result{Outcome: OutcomeDeclined, Error: apiErr.Payload()}
		}
		log.WithFields(log.Fields{"card": card.Mask(d.Number)}).Errorf("payment processor call failed: %s", err)
		return Result{Outcome: OutcomeFailed, Error: fmt.Sprintf("payment processor request failed: %s", err)}
	}

	info := p.bins.Resolve(ctx, binOf(d.Number))
	return Result{Outcome: OutcomeApproved, BinInfo: &info}
}

func (p *Probe) payment(d Details, brand card.Brand) paypal.Payment {
	return paypal.Payment{
		Intent: "sale",
		Payer: paypal.Payer{
			PaymentMethod: "credit_card",
			FundingInstruments: []paypal.FundingInstrument{{
				CreditCard: &paypal.CreditCard{
					Number:      d.Number,
					Type:        brand.ProcessorType(),
					ExpireMonth: d.ExpMonth,
					ExpireYear:  d.ExpYear,
					CVV2:        d.CVC,
					FirstName:   "Test",
					LastName:    "User",
				},
			}},
		},
		Transactions: []paypal.Transaction{{
			Amount: paypal.Amount{
				Total:    p.amount.StringFixed(2),
				Currency: p.currency,
			},
			Description: p.description,
		}},
	}
}

func binOf(number string) string {
	if len(number) < 6 {
		return number
	}
	return number[:6]
}
