package models

import "time"

type BatchRun struct {
	ID          string    `json:"id"`
	Total       int       `json:"total"`
	Valid       int       `json:"valid"`
	Invalid     int       `json:"invalid"`
	Workers     int       `json:"workers"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

func (r BatchRun) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
