package service

import (
	"context"
	"time"

	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	log "github.com/sirupsen/logrus"
)

const lookupRetention = 7 * 24 * time.Hour

type LookupRecorder interface {
	Record(ctx context.Context, entry models.BinLookup) error
}

// JournaledResolver records every lookup it forwards. Journal failures are
// logged and never change the lookup result.
type JournaledResolver struct {
	next       BinResolver
	journal    LookupRecorder
	instanceId string
	now        func() time.Time
}

func NewJournaledResolver(next BinResolver, journal LookupRecorder, instanceId string) *JournaledResolver {
	return &JournaledResolver{next: next, journal: journal, instanceId: instanceId, now: time.Now}
}

func (r *JournaledResolver) Resolve(ctx context.Context, bin string) binlist.Info {
	info := r.next.Resolve(ctx, bin)

	at := r.now().UTC()
	entry := models.BinLookup{
		Bin:        bin,
		OK:         info.OK(),
		Bank:       info.Bank,
		Country:    info.Country,
		Brand:      info.Brand,
		Type:       info.Type,
		Error:      info.Err(),
		InstanceID: r.instanceId,
		LookedUpAt: at,
		ExpiresAt:  at.Add(lookupRetention),
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.journal.Record(jctx, entry); err != nil {
		log.WithField("bin", bin).Warnf("bin lookup journal: %s", err)
	}
	return info
}
