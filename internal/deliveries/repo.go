package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// Repository persists idempotency marks and delivery audit rows. These are the
// only two tables the webhook path writes with contention.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to delivery bookkeeping.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertProcessed attempts to claim the event id. The unique constraint on
// event_id arbitrates concurrent duplicates: exactly one insert lands, the
// rest report inserted=false.
func (r *Repository) InsertProcessed(ctx context.Context, mark *models.ProcessedWebhook) (bool, error) {
	if mark.ID == uuid.Nil {
		mark.ID = uuid.New()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(mark)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteProcessed removes the idempotency mark. Deleting an already-absent row
// is not an error, so a double-failure path cannot throw.
func (r *Repository) DeleteProcessed(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.ProcessedWebhook{}).Error
}

// CreateDelivery appends a new audit row.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

// FinalizeDelivery updates the outcome fields of an audit row.
func (r *Repository) FinalizeDelivery(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus, responseCode int, errMsg *string) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"response_code": responseCode,
			"error":         errMsg,
		}).Error
}

// FindDelivery loads one audit row by id.
func (r *Repository) FindDelivery(ctx context.Context, id uuid.UUID) (*models.WebhookDelivery, error) {
	var delivery models.WebhookDelivery
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}
