package comm

import (
	"encoding/json"
	"time"
)

// Message is the envelope published on NATS subjects.
type Message struct {
	Type       string          `json:"type"` // e.g. "batch-completed"
	Data       json.RawMessage `json:"data"`
	InstanceId string          `json:"instanceid"`
}

// BatchCompleted carries run counts only, never card data.
type BatchCompleted struct {
	JobID       string    `json:"job_id"`
	Total       int       `json:"total"`
	Valid       int       `json:"valid"`
	Invalid     int       `json:"invalid"`
	DurationMs  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}
