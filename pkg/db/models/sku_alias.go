package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// SkuAlias maps an external identifier (variant id, inventory item id) onto an
// internal SKU. Reference data maintained by the catalog sync job; read-only
// from the webhook path.
type SkuAlias struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID   uuid.UUID          `gorm:"column:client_id;type:uuid;not null;uniqueIndex:idx_sku_aliases_lookup"`
	AliasType  enums.SkuAliasType `gorm:"column:alias_type;not null;uniqueIndex:idx_sku_aliases_lookup"`
	AliasValue string             `gorm:"column:alias_value;not null;uniqueIndex:idx_sku_aliases_lookup"`
	SkuID      uuid.UUID          `gorm:"column:sku_id;type:uuid;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
