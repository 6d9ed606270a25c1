package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLocationCode names the location created lazily for tenants that have
// never configured one.
const DefaultLocationCode = "MAIN"

// Location is a stock-keeping site belonging to a client.
type Location struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;not null;uniqueIndex:idx_locations_client_code"`
	Code      string    `gorm:"column:code;not null;uniqueIndex:idx_locations_client_code"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
