package service

import (
	"context"
	"time"

	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ReportSaver interface {
	Save(jobID string, valid, invalid []models.CardReport) error
}

type RunStore interface {
	Create(ctx context.Context, run models.BatchRun) error
	GetByID(ctx context.Context, id string) (*models.BatchRun, error)
}

type EventPublisher interface {
	PublishBatchCompleted(run models.BatchRun) error
}

// BatchService runs a batch end to end: classify, store both report files,
// record the run and announce it. Runs and events are optional.
type BatchService struct {
	processor *batch.Processor
	reports   ReportSaver
	runs      RunStore
	events    EventPublisher
}

func NewBatchService(processor *batch.Processor, reports ReportSaver) *BatchService {
	return &BatchService{processor: processor, reports: reports}
}

func (s *BatchService) WithRunStore(runs RunStore) *BatchService {
	s.runs = runs
	return s
}

func (s *BatchService) WithEvents(events EventPublisher) *BatchService {
	s.events = events
	return s
}

func (s *BatchService) HasRunStore() bool { return s.runs != nil }

func (s *BatchService) Run(ctx context.Context, records []models.CardRecord) (*models.BatchRun, error) {
	run := models.BatchRun{
		ID:        uuid.New().String(),
		Total:     len(records),
		Workers:   s.processor.Workers(),
		StartedAt: time.Now().UTC(),
	}
	logger := log.WithField("job", run.ID)
	logger.Infof("batch run started: rows=%d workers=%d", run.Total, run.Workers)

	valid, invalid := s.processor.Process(ctx, records)
	run.Valid = len(valid)
	run.Invalid = len(invalid)
	run.CompletedAt = time.Now().UTC()

	if err := s.reports.Save(run.ID, valid, invalid); err != nil {
		return nil, err
	}

	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			logger.Errorf("Error [BatchRunStore.Create] %s", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishBatchCompleted(run); err != nil {
			logger.Errorf("Error [Broker.PublishBatchCompleted] %s", err)
		}
	}

	logger.Infof("batch run complete: valid=%d invalid=%d duration=%s",
		run.Valid, run.Invalid, run.Duration().Round(time.Millisecond))
	return &run, nil
}

// GetRun returns nil, nil for unknown runs or when no run store is configured.
func (s *BatchService) GetRun(ctx context.Context, id string) (*models.BatchRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.GetByID(ctx, id)
}
