package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/google/uuid"
)

const (
	ValidReportName   = "valid_cards.csv"
	InvalidReportName = "invalid_cards.csv"
)

var ErrReportNotFound = errors.New("report not found")

// ReportStore keeps the CSV files of each batch job under dir/<job-id>/.
type ReportStore struct {
	dir string
}

func NewReportStore(dir string) (*ReportStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &ReportStore{dir: dir}, nil
}

func (s *ReportStore) Save(jobID string, valid, invalid []models.CardReport) error {
	if _, err := uuid.Parse(jobID); err != nil {
		return fmt.Errorf("invalid job id %q", jobID)
	}
	jobDir := filepath.Join(s.dir, jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	if err := writeReportFile(filepath.Join(jobDir, ValidReportName), valid); err != nil {
		return err
	}
	return writeReportFile(filepath.Join(jobDir, InvalidReportName), invalid)
}

// Path resolves a stored report. Only the two report names of a well-formed
// job id are accepted.
func (s *ReportStore) Path(jobID, filename string) (string, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return "", ErrReportNotFound
	}
	if filename != ValidReportName && filename != InvalidReportName {
		return "", ErrReportNotFound
	}
	path := filepath.Join(s.dir, jobID, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrReportNotFound
		}
		return "", err
	}
	return path, nil
}

func writeReportFile(path string, reports []models.CardReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := batch.WriteReports(f, reports); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
