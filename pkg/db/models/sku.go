package models

import (
	"time"

	"github.com/google/uuid"
)

// Sku is an internal inventory item owned by a client.
type Sku struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID    uuid.UUID `gorm:"column:client_id;type:uuid;not null;index"`
	Code        string    `gorm:"column:code;not null"`
	Name        string    `gorm:"column:name;not null"`
	ExternalSku *string   `gorm:"column:external_sku;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
