package deliveries

import (
	"context"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
)

type guardRepository interface {
	InsertProcessed(ctx context.Context, mark *models.ProcessedWebhook) (bool, error)
	DeleteProcessed(ctx context.Context, eventID string) error
}

// Guard collapses at-least-once webhook delivery to at-most-once processing.
// There is no in-process state; the datastore's unique constraint is the only
// synchronization primitive, so two racing replicas resolve the same way a
// single one would.
type Guard struct {
	repo guardRepository
}

func NewGuard(repo guardRepository) (*Guard, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "guard repo required")
	}
	return &Guard{repo: repo}, nil
}

// Acquire claims the event id. accepted=false means another delivery already
// holds the slot and the caller must no-op with a success response.
func (g *Guard) Acquire(ctx context.Context, eventID, shopDomain, topic string) (bool, error) {
	if eventID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	inserted, err := g.repo.InsertProcessed(ctx, &models.ProcessedWebhook{
		EventID:    eventID,
		ShopDomain: shopDomain,
		Topic:      topic,
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert idempotency mark")
	}
	return inserted, nil
}

// Release frees the slot after a downstream failure so a legitimate platform
// retry of the same event id can be accepted again.
func (g *Guard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if err := g.repo.DeleteProcessed(ctx, eventID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete idempotency mark")
	}
	return nil
}
