package store

import (
	"context"
	"fmt"

	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"go.mongodb.org/mongo-driver/mongo"
)

const LookupCollection = "bin_lookups"

// LookupStore journals BIN lookups for diagnostics. Entries expire through a
// TTL index on expires_at and are never read back by the service.
type LookupStore struct {
	coll *mongo.Collection
}

func NewLookupStore(db *mongo.Database) *LookupStore {
	return &LookupStore{coll: db.Collection(LookupCollection)}
}

func (s *LookupStore) Record(ctx context.Context, entry models.BinLookup) error {
	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("journal bin lookup: %w", err)
	}
	return nil
}
