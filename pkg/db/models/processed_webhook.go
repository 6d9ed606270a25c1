package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedWebhook marks a webhook id as accepted. The unique constraint on
// event_id is the synchronization primitive collapsing at-least-once delivery
// to at-most-once processing; rows are deleted only when downstream handling
// fails so the platform retry can be accepted again.
type ProcessedWebhook struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    string    `gorm:"column:event_id;not null;uniqueIndex"`
	ShopDomain string    `gorm:"column:shop_domain;not null"`
	Topic      string    `gorm:"column:topic;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
