package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/checksvc/service"
	"github.com/avvvet/cardcheck-services/internal/probe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProber struct {
	result probe.Result
	calls  int
}

func (p *stubProber) Probe(context.Context, probe.Details) probe.Result {
	p.calls++
	return p.result
}

type stubResolver struct {
	info binlist.Info
	bins []string
}

func (r *stubResolver) Resolve(_ context.Context, bin string) binlist.Info {
	r.bins = append(r.bins, bin)
	return r.info
}

type memReports struct {
	jobID          string
	valid, invalid []models.CardReport
	err            error
}

func (m *memReports) Save(jobID string, valid, invalid []models.CardReport) error {
	m.jobID, m.valid, m.invalid = jobID, valid, invalid
	return m.err
}

type memRuns struct {
	runs map[string]models.BatchRun
	err  error
}

func (m *memRuns) Create(_ context.Context, run models.BatchRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs[run.ID] = run
	return nil
}

func (m *memRuns) GetByID(_ context.Context, id string) (*models.BatchRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

type memEvents struct {
	published []models.BatchRun
}

func (m *memEvents) PublishBatchCompleted(run models.BatchRun) error {
	m.published = append(m.published, run)
	return nil
}

var testInfo = binlist.Info{Bank: "Test Bank", Country: "Test Country", Brand: "visa", Type: "debit"}

func TestCheckCard_Approved(t *testing.T) {
	info := testInfo
	p := &stubProber{result: probe.Result{Outcome: probe.OutcomeApproved, BinInfo: &info}}
	r := &stubResolver{info: testInfo}

	res, err := service.NewCheckService(p, r).CheckCard(context.Background(),
		probe.Details{Number: "4111111111111111", ExpMonth: "12", ExpYear: "2030", CVC: "123"})
	require.NoError(t, err)

	assert.True(t, res.LuhnValid)
	assert.Equal(t, "Visa", res.CardType)
	assert.Equal(t, "Banking and Financial", res.MII)
	assert.Equal(t, models.BinInfo{Bank: "Test Bank", Country: "Test Country", Brand: "visa", Type: "debit"}, res.BinInfo)
	assert.True(t, res.CanPurchase)
	assert.Nil(t, res.TransactionError)
	assert.Equal(t, []string{"411111"}, r.bins)
}

func TestCheckCard_ChecksumInvalidStillProbes(t *testing.T) {
	p := &stubProber{result: probe.Result{Outcome: probe.OutcomeDeclined, Error: "refused"}}
	r := &stubResolver{info: binlist.UnknownInfo(&binlist.Failure{Reason: binlist.FailureStatus, Detail: "404"})}

	res, err := service.NewCheckService(p, r).CheckCard(context.Background(), probe.Details{Number: "4111111111111112"})
	require.NoError(t, err)

	assert.False(t, res.LuhnValid)
	assert.False(t, res.CanPurchase)
	require.NotNil(t, res.TransactionError)
	assert.Equal(t, "refused", *res.TransactionError)
	assert.Equal(t, "Unknown", res.BinInfo.Bank)
	assert.NotEmpty(t, res.BinInfo.Error)
	assert.Equal(t, 1, p.calls)
}

func TestCheckCard_Malformed(t *testing.T) {
	p := &stubProber{}
	r := &stubResolver{}

	_, err := service.NewCheckService(p, r).CheckCard(context.Background(), probe.Details{Number: "4111 1111"})
	require.ErrorIs(t, err, card.ErrMalformed)
	assert.Equal(t, 0, p.calls)
	assert.Empty(t, r.bins)
}

func TestBatchService_Run(t *testing.T) {
	info := testInfo
	p := &stubProber{result: probe.Result{Outcome: probe.OutcomeApproved, BinInfo: &info}}
	reports := &memReports{}
	runs := &memRuns{runs: map[string]models.BatchRun{}}
	events := &memEvents{}

	svc := service.NewBatchService(batch.NewProcessor(p, batch.Options{}), reports).
		WithRunStore(runs).
		WithEvents(events)

	run, err := svc.Run(context.Background(), []models.CardRecord{
		{CardNumber: "4111111111111111", ExpMonth: "12", ExpYear: "2030", CVC: "123"},
		{CardNumber: "4111111111111112", ExpMonth: "12", ExpYear: "2030", CVC: "123"},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Valid)
	assert.Equal(t, 1, run.Invalid)
	assert.Equal(t, run.ID, reports.jobID)
	assert.Len(t, reports.valid, 1)
	assert.Len(t, reports.invalid, 1)
	assert.Equal(t, 1, p.calls)

	stored, err := svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, run.Valid, stored.Valid)

	require.Len(t, events.published, 1)
	assert.Equal(t, run.ID, events.published[0].ID)
}

func TestBatchService_RunStoreFailureDoesNotFailRun(t *testing.T) {
	svc := service.NewBatchService(batch.NewProcessor(&stubProber{}, batch.Options{}), &memReports{}).
		WithRunStore(&memRuns{err: errors.New("db down")})

	run, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Total)
}

func TestBatchService_ReportSaveFailure(t *testing.T) {
	svc := service.NewBatchService(batch.NewProcessor(&stubProber{}, batch.Options{}), &memReports{err: errors.New("disk full")})

	_, err := svc.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestBatchService_GetRunWithoutStore(t *testing.T) {
	svc := service.NewBatchService(batch.NewProcessor(&stubProber{}, batch.Options{}), &memReports{})
	assert.False(t, svc.HasRunStore())

	run, err := svc.GetRun(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, run)
}
