package deliveries

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
)

type logRepository interface {
	CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) error
	FinalizeDelivery(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus, responseCode int, errMsg *string) error
}

// Log is the audit trail of every delivery attempt. It is intentionally
// separate from the idempotency guard: releasing a guard slot on failure never
// touches these rows.
type Log struct {
	repo logRepository
}

func NewLog(repo logRepository) (*Log, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "delivery log repo required")
	}
	return &Log{repo: repo}, nil
}

// Record creates the pending audit row before any business logic runs.
func (l *Log) Record(ctx context.Context, eventID, shopDomain, topic string, payload json.RawMessage) (uuid.UUID, error) {
	delivery := &models.WebhookDelivery{
		EventID:    eventID,
		ShopDomain: shopDomain,
		Topic:      topic,
		Payload:    payload,
		Status:     enums.DeliveryStatusPending,
	}
	if err := l.repo.CreateDelivery(ctx, delivery); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery")
	}
	return delivery.ID, nil
}

// Complete finalizes the row with the processing outcome.
func (l *Log) Complete(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus, responseCode int, errMsg string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery log id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}
	var msg *string
	if errMsg != "" {
		msg = &errMsg
	}
	if err := l.repo.FinalizeDelivery(ctx, id, status, responseCode, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize delivery")
	}
	return nil
}
