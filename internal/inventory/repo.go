package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// Repository manages persistence for the append-only inventory ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateEntries appends a batch of ledger entries. Callers run this inside a
// transaction so an order's entries land fully or not at all.
func (r *Repository) CreateEntries(ctx context.Context, entries []models.InventoryLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == uuid.Nil {
			entries[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// ExistsBySource reports whether any entry was already written for the given
// source event and transaction type(s). This is the order-scoped idempotency
// check, independent of the per-delivery guard.
func (r *Repository) ExistsBySource(ctx context.Context, clientID uuid.UUID, sourceEventID string, txnTypes ...enums.InventoryTxnType) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.InventoryLedgerEntry{}).
		Where("client_id = ? AND source_event_id = ?", clientID, sourceEventID)
	if len(txnTypes) > 0 {
		query = query.Where("txn_type IN ?", txnTypes)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumQty folds the ledger into the current on-hand quantity for a SKU at a
// location.
func (r *Repository) SumQty(ctx context.Context, clientID, skuID, locationID uuid.UUID) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryLedgerEntry{}).
		Select("SUM(qty_delta)").
		Where("client_id = ? AND sku_id = ? AND location_id = ?", clientID, skuID, locationID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ListBySource returns the entries written for a source event, oldest first.
func (r *Repository) ListBySource(ctx context.Context, clientID uuid.UUID, sourceEventID string) ([]models.InventoryLedgerEntry, error) {
	var entries []models.InventoryLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND source_event_id = ?", clientID, sourceEventID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
