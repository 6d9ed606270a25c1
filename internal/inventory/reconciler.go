package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/internal/skus"
	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
)

type skuResolver interface {
	Resolve(ctx context.Context, clientID uuid.UUID, variantID, externalSku, productID string) (*skus.Resolution, error)
	ResolveInventoryItem(ctx context.Context, clientID uuid.UUID, inventoryItemID string) (*skus.Resolution, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ledgerPublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) error
}

// OrderLine is one line item from an order or refund payload.
type OrderLine struct {
	VariantID   string
	ProductID   string
	ExternalSku string
	Title       string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// OrderInput is the reconciliation-relevant slice of an order event.
type OrderInput struct {
	ExternalID string
	Name       string
	Lines      []OrderLine
}

// Result summarizes what a reconciliation pass did.
type Result struct {
	AlreadyReconciled bool
	EntriesWritten    int
	LinesSkipped      int
}

type ReconcilerParams struct {
	LedgerRepo   *Repository
	LocationRepo *LocationRepository
	Resolver     skuResolver
	TxRunner     txRunner
	Publisher    ledgerPublisher
	Logger       *logger.Logger
}

// Reconciler turns order, refund and inventory-level events into ledger
// entries.
type Reconciler struct {
	ledgerRepo   *Repository
	locationRepo *LocationRepository
	resolver     skuResolver
	txRunner     txRunner
	publisher    ledgerPublisher
	logg         *logger.Logger
}

func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.LedgerRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repo required")
	}
	if params.LocationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "location repo required")
	}
	if params.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sku resolver required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Reconciler{
		ledgerRepo:   params.LedgerRepo,
		locationRepo: params.LocationRepo,
		resolver:     params.Resolver,
		txRunner:     params.TxRunner,
		publisher:    params.Publisher,
		logg:         params.Logger,
	}, nil
}

// ReconcileOrder decrements stock for every resolvable line item of an order.
// The (client, order id, sale) existence check makes the whole order
// idempotent across orders/create and orders/paid, which arrive with distinct
// webhook ids for the same underlying order.
func (r *Reconciler) ReconcileOrder(ctx context.Context, clientID uuid.UUID, in OrderInput) (*Result, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if in.ExternalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	done, err := r.ledgerRepo.ExistsBySource(ctx, clientID, in.ExternalID, enums.InventoryTxnTypeSale)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order reconciliation state")
	}
	if done {
		if r.logg != nil {
			r.logg.Info(r.logg.WithField(ctx, "order_id", in.ExternalID), "order already reconciled, skipping")
		}
		return &Result{AlreadyReconciled: true}, nil
	}

	note := fmt.Sprintf("shopify order %s", orderLabel(in))
	entries, skipped, err := r.buildEntries(ctx, clientID, in, enums.InventoryTxnTypeSale, enums.LedgerSourceWebhookOrder, -1, note)
	if err != nil {
		return nil, err
	}

	if err := r.writeBatch(ctx, entries); err != nil {
		return nil, err
	}
	r.publishReconciled(ctx, clientID, in.ExternalID, "order", len(entries))

	return &Result{EntriesWritten: len(entries), LinesSkipped: skipped}, nil
}

// ReconcileRefund restocks returned line items. Same shape as order
// reconciliation with a positive delta, keyed on the refund id.
func (r *Reconciler) ReconcileRefund(ctx context.Context, clientID uuid.UUID, in OrderInput) (*Result, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if in.ExternalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}

	done, err := r.ledgerRepo.ExistsBySource(ctx, clientID, in.ExternalID, enums.InventoryTxnTypeReturn)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check refund reconciliation state")
	}
	if done {
		return &Result{AlreadyReconciled: true}, nil
	}

	note := fmt.Sprintf("shopify refund %s", in.ExternalID)
	entries, skipped, err := r.buildEntries(ctx, clientID, in, enums.InventoryTxnTypeReturn, enums.LedgerSourceWebhookRefund, 1, note)
	if err != nil {
		return nil, err
	}

	if err := r.writeBatch(ctx, entries); err != nil {
		return nil, err
	}
	r.publishReconciled(ctx, clientID, in.ExternalID, "refund", len(entries))

	return &Result{EntriesWritten: len(entries), LinesSkipped: skipped}, nil
}

// AdjustLevel books a single adjustment bringing the ledger fold in line with
// the platform-reported available quantity for an inventory item.
func (r *Reconciler) AdjustLevel(ctx context.Context, clientID uuid.UUID, eventID, inventoryItemID string, available int) (*Result, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if eventID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}

	done, err := r.ledgerRepo.ExistsBySource(ctx, clientID, eventID,
		enums.InventoryTxnTypeAdjustmentIn, enums.InventoryTxnTypeAdjustmentOut)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check adjustment state")
	}
	if done {
		return &Result{AlreadyReconciled: true}, nil
	}

	res, err := r.resolver.ResolveInventoryItem(ctx, clientID, inventoryItemID)
	if err != nil {
		if errors.Is(err, skus.ErrNotResolved) {
			if r.logg != nil {
				r.logg.Warn(r.logg.WithField(ctx, "inventory_item_id", inventoryItemID), "inventory item not mapped, skipping level update")
			}
			return &Result{LinesSkipped: 1}, nil
		}
		return nil, err
	}

	location, err := r.locationRepo.FindOrCreateDefault(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve default location")
	}

	current, err := r.ledgerRepo.SumQty(ctx, clientID, res.SkuID, location.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fold current quantity")
	}

	delta := available - current
	if delta == 0 {
		return &Result{}, nil
	}
	txnType := enums.InventoryTxnTypeAdjustmentIn
	if delta < 0 {
		txnType = enums.InventoryTxnTypeAdjustmentOut
	}

	eventRef := eventID
	entry := models.InventoryLedgerEntry{
		ClientID:      clientID,
		SkuID:         res.SkuID,
		LocationID:    location.ID,
		QtyDelta:      delta,
		TxnType:       txnType,
		SourceType:    enums.LedgerSourceWebhookInventory,
		SourceEventID: &eventRef,
		Note:          fmt.Sprintf("level sync: reported %d, ledger %d", available, current),
	}
	if err := r.writeBatch(ctx, []models.InventoryLedgerEntry{entry}); err != nil {
		return nil, err
	}
	return &Result{EntriesWritten: 1}, nil
}

func (r *Reconciler) buildEntries(ctx context.Context, clientID uuid.UUID, in OrderInput, txnType enums.InventoryTxnType, sourceType enums.LedgerSourceType, sign int, note string) ([]models.InventoryLedgerEntry, int, error) {
	location, err := r.locationRepo.FindOrCreateDefault(ctx, clientID)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve default location")
	}

	entries := make([]models.InventoryLedgerEntry, 0, len(in.Lines))
	skipped := 0
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			skipped++
			continue
		}
		res, err := r.resolver.Resolve(ctx, clientID, line.VariantID, line.ExternalSku, line.ProductID)
		if err != nil {
			if errors.Is(err, skus.ErrNotResolved) {
				skipped++
				if r.logg != nil {
					lineCtx := r.logg.WithFields(ctx, map[string]any{
						"variant_id":   line.VariantID,
						"external_sku": line.ExternalSku,
						"line_title":   line.Title,
					})
					r.logg.Warn(lineCtx, "line item not resolvable, skipping")
				}
				continue
			}
			return nil, 0, err
		}

		eventRef := in.ExternalID
		entry := models.InventoryLedgerEntry{
			ClientID:      clientID,
			SkuID:         res.SkuID,
			LocationID:    location.ID,
			QtyDelta:      sign * line.Quantity,
			TxnType:       txnType,
			SourceType:    sourceType,
			SourceEventID: &eventRef,
			Note:          note,
		}
		if !line.UnitPrice.IsZero() {
			price := line.UnitPrice
			entry.UnitPrice = &price
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func (r *Reconciler) writeBatch(ctx context.Context, entries []models.InventoryLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return r.ledgerRepo.WithTx(tx).CreateEntries(ctx, entries)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger batch")
	}
	return nil
}

func (r *Reconciler) publishReconciled(ctx context.Context, clientID uuid.UUID, sourceEventID, kind string, entryCount int) {
	if r.publisher == nil || entryCount == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"client_id":       clientID.String(),
		"source_event_id": sourceEventID,
		"kind":            kind,
		"entry_count":     entryCount,
	})
	if err != nil {
		return
	}
	if err := r.publisher.Publish(ctx, payload, map[string]string{"event": "ledger.reconciled"}); err != nil && r.logg != nil {
		r.logg.Warn(r.logg.WithField(ctx, "source_event_id", sourceEventID), "ledger event publish failed")
	}
}

func orderLabel(in OrderInput) string {
	if in.Name != "" {
		return in.Name
	}
	return in.ExternalID
}
