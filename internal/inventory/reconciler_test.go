package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/internal/skus"
	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS skus (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  external_sku TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sku_aliases (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  alias_type TEXT NOT NULL,
  alias_value TEXT NOT NULL,
  sku_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (client_id, alias_type, alias_value)
);`,
		`CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (client_id, code)
);`,
		`CREATE TABLE IF NOT EXISTS inventory_ledger_entries (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  sku_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  qty_delta INTEGER NOT NULL,
  txn_type TEXT NOT NULL,
  source_type TEXT NOT NULL,
  source_event_id TEXT,
  unit_price TEXT,
  note TEXT,
  actor_id TEXT,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type failingTxRunner struct{}

func (failingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return errors.New("connection reset by peer")
}

func seedSkuWithAlias(t *testing.T, db *gorm.DB, clientID uuid.UUID, variantID string) uuid.UUID {
	t.Helper()
	skuID := uuid.New()
	require.NoError(t, db.Create(&models.Sku{
		ID:       skuID,
		ClientID: clientID,
		Code:     "SKU-" + variantID,
		Name:     "Widget " + variantID,
	}).Error)
	require.NoError(t, db.Create(&models.SkuAlias{
		ID:         uuid.New(),
		ClientID:   clientID,
		AliasType:  enums.SkuAliasTypeShopifyVariantID,
		AliasValue: variantID,
		SkuID:      skuID,
	}).Error)
	return skuID
}

func newTestReconciler(t *testing.T, db *gorm.DB) *Reconciler {
	t.Helper()
	resolver, err := skus.NewResolver(skus.NewRepository(db), nil)
	require.NoError(t, err)
	rec, err := NewReconciler(ReconcilerParams{
		LedgerRepo:   NewRepository(db),
		LocationRepo: NewLocationRepository(db),
		Resolver:     resolver,
		TxRunner:     gormTxRunner{db: db},
	})
	require.NoError(t, err)
	return rec
}

func TestReconcileOrder_MixedResolution(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	skuID := seedSkuWithAlias(t, db, clientID, "987")
	rec := newTestReconciler(t, db)
	ctx := context.Background()

	result, err := rec.ReconcileOrder(ctx, clientID, OrderInput{
		ExternalID: "5001",
		Name:       "#1042",
		Lines: []OrderLine{
			{VariantID: "987", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
			{VariantID: "000", ExternalSku: "GHOST", ProductID: "111", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyReconciled)
	assert.Equal(t, 1, result.EntriesWritten)
	assert.Equal(t, 1, result.LinesSkipped)

	entries, err := NewRepository(db).ListBySource(ctx, clientID, "5001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -3, entries[0].QtyDelta)
	assert.Equal(t, skuID, entries[0].SkuID)
	assert.Equal(t, enums.InventoryTxnTypeSale, entries[0].TxnType)
	assert.Equal(t, enums.LedgerSourceWebhookOrder, entries[0].SourceType)
	require.NotNil(t, entries[0].UnitPrice)
	assert.True(t, entries[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
}

func TestReconcileOrder_IdempotentAcrossTopics(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	seedSkuWithAlias(t, db, clientID, "987")
	rec := newTestReconciler(t, db)
	ctx := context.Background()

	order := OrderInput{
		ExternalID: "5002",
		Lines:      []OrderLine{{VariantID: "987", Quantity: 1}},
	}

	// orders/create delivery
	first, err := rec.ReconcileOrder(ctx, clientID, order)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EntriesWritten)

	// orders/paid delivery: different webhook id, same order
	second, err := rec.ReconcileOrder(ctx, clientID, order)
	require.NoError(t, err)
	assert.True(t, second.AlreadyReconciled)
	assert.Equal(t, 0, second.EntriesWritten)

	entries, err := NewRepository(db).ListBySource(ctx, clientID, "5002")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReconcileOrder_AllLinesUnresolvedWritesNothing(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	rec := newTestReconciler(t, db)

	result, err := rec.ReconcileOrder(context.Background(), clientID, OrderInput{
		ExternalID: "5003",
		Lines:      []OrderLine{{VariantID: "404", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesWritten)
	assert.Equal(t, 1, result.LinesSkipped)
}

func TestReconcileOrder_BatchFailureSurfacesDependencyError(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	seedSkuWithAlias(t, db, clientID, "987")

	resolver, err := skus.NewResolver(skus.NewRepository(db), nil)
	require.NoError(t, err)
	rec, err := NewReconciler(ReconcilerParams{
		LedgerRepo:   NewRepository(db),
		LocationRepo: NewLocationRepository(db),
		Resolver:     resolver,
		TxRunner:     failingTxRunner{},
	})
	require.NoError(t, err)

	_, err = rec.ReconcileOrder(context.Background(), clientID, OrderInput{
		ExternalID: "5004",
		Lines:      []OrderLine{{VariantID: "987", Quantity: 2}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	// nothing landed, so a retried delivery reconciles from scratch
	entries, listErr := NewRepository(db).ListBySource(context.Background(), clientID, "5004")
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestReconcileRefund_RestocksOnce(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	skuID := seedSkuWithAlias(t, db, clientID, "987")
	rec := newTestReconciler(t, db)
	ctx := context.Background()

	refund := OrderInput{
		ExternalID: "r-9001",
		Lines:      []OrderLine{{VariantID: "987", Quantity: 2}},
	}

	result, err := rec.ReconcileRefund(ctx, clientID, refund)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesWritten)

	entries, err := NewRepository(db).ListBySource(ctx, clientID, "r-9001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].QtyDelta)
	assert.Equal(t, enums.InventoryTxnTypeReturn, entries[0].TxnType)
	assert.Equal(t, skuID, entries[0].SkuID)

	second, err := rec.ReconcileRefund(ctx, clientID, refund)
	require.NoError(t, err)
	assert.True(t, second.AlreadyReconciled)
}

func TestAdjustLevel_BringsFoldToReported(t *testing.T) {
	db := setupInventoryTestDB(t)
	clientID := uuid.New()
	skuID := seedSkuWithAlias(t, db, clientID, "987")
	require.NoError(t, db.Create(&models.SkuAlias{
		ID:         uuid.New(),
		ClientID:   clientID,
		AliasType:  enums.SkuAliasTypeShopifyInventoryItemID,
		AliasValue: "inv-777",
		SkuID:      skuID,
	}).Error)

	rec := newTestReconciler(t, db)
	ctx := context.Background()

	// seed stock: receipt of 5
	location, err := NewLocationRepository(db).FindOrCreateDefault(ctx, clientID)
	require.NoError(t, err)
	require.NoError(t, NewRepository(db).CreateEntries(ctx, []models.InventoryLedgerEntry{{
		ClientID:   clientID,
		SkuID:      skuID,
		LocationID: location.ID,
		QtyDelta:   5,
		TxnType:    enums.InventoryTxnTypeReceipt,
		SourceType: enums.LedgerSourceManual,
	}}))

	result, err := rec.AdjustLevel(ctx, clientID, "evt-adj-1", "inv-777", 8)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesWritten)

	current, err := NewRepository(db).SumQty(ctx, clientID, skuID, location.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, current)

	// replaying the same webhook id books nothing
	replay, err := rec.AdjustLevel(ctx, clientID, "evt-adj-1", "inv-777", 8)
	require.NoError(t, err)
	assert.True(t, replay.AlreadyReconciled)

	// level already in sync: no entry
	same, err := rec.AdjustLevel(ctx, clientID, "evt-adj-2", "inv-777", 8)
	require.NoError(t, err)
	assert.Equal(t, 0, same.EntriesWritten)
}

func TestAdjustLevel_UnmappedItemSkips(t *testing.T) {
	db := setupInventoryTestDB(t)
	rec := newTestReconciler(t, db)

	result, err := rec.AdjustLevel(context.Background(), uuid.New(), "evt-adj-3", "inv-unknown", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, result.LinesSkipped)
	assert.Equal(t, 0, result.EntriesWritten)
}

func TestFindOrCreateDefaultLocation(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewLocationRepository(db)
	clientID := uuid.New()
	ctx := context.Background()

	first, err := repo.FindOrCreateDefault(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocationCode, first.Code)

	second, err := repo.FindOrCreateDefault(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "default location must be created once")
}
