package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// InventoryLedgerEntry is one signed quantity movement. The table is
// append-only; on-hand stock for a SKU is the fold over qty_delta, never a
// mutated counter.
type InventoryLedgerEntry struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID      uuid.UUID              `gorm:"column:client_id;type:uuid;not null;index:idx_ledger_source"`
	SkuID         uuid.UUID              `gorm:"column:sku_id;type:uuid;not null"`
	LocationID    uuid.UUID              `gorm:"column:location_id;type:uuid;not null"`
	QtyDelta      int                    `gorm:"column:qty_delta;not null"`
	TxnType       enums.InventoryTxnType `gorm:"column:txn_type;type:inventory_txn_type;not null;index:idx_ledger_source"`
	SourceType    enums.LedgerSourceType `gorm:"column:source_type;not null"`
	SourceEventID *string                `gorm:"column:source_event_id;index:idx_ledger_source"`
	UnitPrice     *decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2)"`
	Note          string                 `gorm:"column:note"`
	ActorID       *uuid.UUID             `gorm:"column:actor_id;type:uuid"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
