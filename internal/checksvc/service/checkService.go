package service

import (
	"context"

	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/probe"
)

type Prober interface {
	Probe(ctx context.Context, d probe.Details) probe.Result
}

type BinResolver interface {
	Resolve(ctx context.Context, bin string) binlist.Info
}

// CheckService answers single card checks.
type CheckService struct {
	prober Prober
	bins   BinResolver
}

func NewCheckService(prober Prober, bins BinResolver) *CheckService {
	return &CheckService{prober: prober, bins: bins}
}

// CheckCard reports checksum, classification, BIN data and purchase
// capability. The lookup and the probe run whatever the checksum outcome.
// Only a malformed card number is returned as an error.
func (s *CheckService) CheckCard(ctx context.Context, d probe.Details) (*models.CheckResult, error) {
	luhnValid, err := card.Valid(d.Number)
	if err != nil {
		return nil, err
	}
	class, err := card.Classify(d.Number)
	if err != nil {
		return nil, err
	}

	bin := d.Number
	if len(bin) > 6 {
		bin = bin[:6]
	}
	info := s.bins.Resolve(ctx, bin)

	res := s.prober.Probe(ctx, d)

	out := &models.CheckResult{
		LuhnValid:   luhnValid,
		CardType:    class.Brand.String(),
		MII:         class.Industry.String(),
		BinInfo:     toBinInfo(info),
		CanPurchase: res.CanPurchase(),
	}
	if res.Error != "" {
		msg := res.Error
		out.TransactionError = &msg
	}
	return out, nil
}

func toBinInfo(info binlist.Info) models.BinInfo {
	return models.BinInfo{
		Bank:    info.Bank,
		Country: info.Country,
		Brand:   info.Brand,
		Type:    info.Type,
		Error:   info.Err(),
	}
}
