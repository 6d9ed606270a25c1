package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// WebhookDelivery is the append-only audit row for every delivery attempt,
// kept regardless of processing outcome or idempotency-slot release.
type WebhookDelivery struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID      string               `gorm:"column:event_id;not null;index"`
	ShopDomain   string               `gorm:"column:shop_domain;not null"`
	Topic        string               `gorm:"column:topic;not null"`
	Payload      json.RawMessage      `gorm:"column:payload;type:jsonb"`
	Status       enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'pending'"`
	ResponseCode int                  `gorm:"column:response_code"`
	Error        *string              `gorm:"column:error"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
