package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/probe"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const ChecksumFailed = "Failed checksum check"

type Prober interface {
	Probe(ctx context.Context, d probe.Details) probe.Result
}

type Options struct {
	// Workers bounds how many records are evaluated at once. Values <= 1 run
	// the batch strictly sequentially.
	Workers int
}

type Processor struct {
	prober  Prober
	workers int
}

func NewProcessor(prober Prober, opts Options) *Processor {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Processor{prober: prober, workers: workers}
}

func (p *Processor) Workers() int { return p.workers }

// Process evaluates every record and partitions the reports by purchase
// capability. Each output keeps the relative input order. A bad row never
// stops the batch.
func (p *Processor) Process(ctx context.Context, records []models.CardRecord) (valid, invalid []models.CardReport) {
	reports := make([]models.CardReport, len(records))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range records {
		i := i
		g.Go(func() error {
			reports[i] = p.evaluate(ctx, records[i])
			return nil
		})
	}
	_ = g.Wait()

	valid = make([]models.CardReport, 0, len(reports))
	invalid = make([]models.CardReport, 0, len(reports))
	for _, r := range reports {
		if r.CanPurchase {
			valid = append(valid, r)
		} else {
			invalid = append(invalid, r)
		}
	}

	log.WithFields(log.Fields{
		"total":   len(records),
		"valid":   len(valid),
		"invalid": len(invalid),
		"workers": p.workers,
	}).Info("batch processed")
	return valid, invalid
}

func (p *Processor) evaluate(ctx context.Context, rec models.CardRecord) models.CardReport {
	report := newReport(rec)

	if rec.ReadError != "" {
		report.TransactionError = rec.ReadError
		return report
	}
	if missing := rec.Missing(); len(missing) > 0 {
		report.TransactionError = fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", "))
		return report
	}

	ok, err := card.Valid(rec.CardNumber)
	if err != nil {
		report.TransactionError = err.Error()
		return report
	}
	if !ok {
		report.TransactionError = ChecksumFailed
		return report
	}

	res := p.prober.Probe(ctx, probe.Details{
		Number:   rec.CardNumber,
		ExpMonth: rec.ExpMonth,
		ExpYear:  rec.ExpYear,
		CVC:      rec.CVC,
	})
	report.CanPurchase = res.CanPurchase()
	report.TransactionError = res.Error
	if res.BinInfo != nil {
		report.Bank = res.BinInfo.Bank
		report.Country = res.BinInfo.Country
		report.Brand = res.BinInfo.Brand
		report.Type = res.BinInfo.Type
	}
	return report
}

func newReport(rec models.CardRecord) models.CardReport {
	return models.CardReport{
		CardRecord: rec,
		CardType:   card.BrandOf(rec.CardNumber).String(),
		MII:        card.IndustryOf(rec.CardNumber).String(),
		Bank:       binlist.Unknown,
		Country:    binlist.Unknown,
		Brand:      binlist.Unknown,
		Type:       binlist.Unknown,
	}
}
