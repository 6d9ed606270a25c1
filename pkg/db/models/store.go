package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store maps a connected Shopify shop to an internal client (tenant). Rows are
// created by the OAuth connection flow; the webhook subsystem only reads them.
type Store struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopDomain string         `gorm:"column:shop_domain;not null;uniqueIndex:idx_stores_domain_active,where:active"`
	ClientID   uuid.UUID      `gorm:"column:client_id;type:uuid;not null"`
	Active     bool           `gorm:"column:active;not null;default:true"`
	Topics     pq.StringArray `gorm:"column:topics;type:text[]"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
