package models

import "time"

// BinLookup is a journal entry for one bank-identification lookup. It holds
// the six digit prefix only.
type BinLookup struct {
	Bin        string    `json:"bin" bson:"bin"`
	OK         bool      `json:"ok" bson:"ok"`
	Bank       string    `json:"bank" bson:"bank"`
	Country    string    `json:"country" bson:"country"`
	Brand      string    `json:"brand" bson:"brand"`
	Type       string    `json:"type" bson:"type"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	InstanceID string    `json:"instance_id" bson:"instance_id"`
	LookedUpAt time.Time `json:"looked_up_at" bson:"looked_up_at"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
}
