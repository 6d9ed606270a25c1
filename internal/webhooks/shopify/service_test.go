package shopifywebhook

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beacontrade/stocksync-backend/internal/inventory"
	"github.com/beacontrade/stocksync-backend/internal/skus"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
)

type fakeReconciler struct {
	orders  []inventory.OrderInput
	refunds []inventory.OrderInput
	adjusts []struct {
		eventID string
		itemID  string
		avail   int
	}
	err error
}

func (f *fakeReconciler) ReconcileOrder(ctx context.Context, clientID uuid.UUID, in inventory.OrderInput) (*inventory.Result, error) {
	f.orders = append(f.orders, in)
	if f.err != nil {
		return nil, f.err
	}
	return &inventory.Result{EntriesWritten: len(in.Lines)}, nil
}

func (f *fakeReconciler) ReconcileRefund(ctx context.Context, clientID uuid.UUID, in inventory.OrderInput) (*inventory.Result, error) {
	f.refunds = append(f.refunds, in)
	if f.err != nil {
		return nil, f.err
	}
	return &inventory.Result{EntriesWritten: len(in.Lines)}, nil
}

func (f *fakeReconciler) AdjustLevel(ctx context.Context, clientID uuid.UUID, eventID, inventoryItemID string, available int) (*inventory.Result, error) {
	f.adjusts = append(f.adjusts, struct {
		eventID string
		itemID  string
		avail   int
	}{eventID, inventoryItemID, available})
	if f.err != nil {
		return nil, f.err
	}
	return &inventory.Result{EntriesWritten: 1}, nil
}

type fakeResolver struct {
	known map[string]uuid.UUID
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, clientID uuid.UUID, variantID, externalSku, productID string) (*skus.Resolution, error) {
	f.calls++
	if skuID, ok := f.known[variantID]; ok {
		return &skus.Resolution{SkuID: skuID, Strategy: enums.SkuMatchStrategyAlias}, nil
	}
	return nil, skus.ErrNotResolved
}

type fakeSkuRepo struct {
	updates map[uuid.UUID]string
}

func (f *fakeSkuRepo) UpdateExternalFields(ctx context.Context, skuID uuid.UUID, externalSku *string, name string) error {
	if f.updates == nil {
		f.updates = map[uuid.UUID]string{}
	}
	value := ""
	if externalSku != nil {
		value = *externalSku
	}
	f.updates[skuID] = value
	return nil
}

func newTestService(t *testing.T, rec *fakeReconciler, res *fakeResolver, repo *fakeSkuRepo) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Reconciler: rec,
		Resolver:   res,
		SkuRepo:    repo,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func newEvent(topic string, payload any) *Event {
	raw, _ := json.Marshal(payload)
	return &Event{
		ID:         "wh-1",
		ShopDomain: "acme.myshopify.com",
		Topic:      topic,
		ClientID:   uuid.New(),
		Payload:    raw,
	}
}

func TestHandleEvent_OrderCreate(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("orders/create", map[string]any{
		"id":   5001,
		"name": "#1042",
		"line_items": []map[string]any{
			{"variant_id": 987, "product_id": 111, "sku": "TEE-BLK-M", "quantity": 3, "price": "19.99"},
		},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	require.Len(t, rec.orders, 1)
	order := rec.orders[0]
	assert.Equal(t, "5001", order.ExternalID)
	assert.Equal(t, "#1042", order.Name)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "987", order.Lines[0].VariantID)
	assert.Equal(t, "111", order.Lines[0].ProductID)
	assert.Equal(t, "TEE-BLK-M", order.Lines[0].ExternalSku)
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
}

func TestHandleEvent_OrderMissingID(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("orders/paid", map[string]any{
		"line_items": []map[string]any{{"variant_id": 987, "quantity": 1}},
	})

	err := svc.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Empty(t, rec.orders)
}

func TestHandleEvent_RefundSkipsNoRestock(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("refunds/create", map[string]any{
		"id":       9001,
		"order_id": 5001,
		"refund_line_items": []map[string]any{
			{"quantity": 2, "restock_type": "return", "line_item": map[string]any{"variant_id": 987, "quantity": 2}},
			{"quantity": 1, "restock_type": "no_restock", "line_item": map[string]any{"variant_id": 654, "quantity": 1}},
		},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	require.Len(t, rec.refunds, 1)
	refund := rec.refunds[0]
	assert.Equal(t, "9001", refund.ExternalID)
	require.Len(t, refund.Lines, 1)
	assert.Equal(t, "987", refund.Lines[0].VariantID)
	assert.Equal(t, 2, refund.Lines[0].Quantity)
}

func TestHandleEvent_RefundAllNoRestock(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("refunds/create", map[string]any{
		"id": 9002,
		"refund_line_items": []map[string]any{
			{"quantity": 1, "restock_type": "no_restock", "line_item": map[string]any{"variant_id": 654, "quantity": 1}},
		},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, rec.refunds, "nothing to restock, reconciler must not run")
}

func TestHandleEvent_InventoryLevelUpdate(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("inventory_levels/update", map[string]any{
		"inventory_item_id": 777,
		"location_id":       1,
		"available":         12,
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	require.Len(t, rec.adjusts, 1)
	assert.Equal(t, "wh-1", rec.adjusts[0].eventID)
	assert.Equal(t, "777", rec.adjusts[0].itemID)
	assert.Equal(t, 12, rec.adjusts[0].avail)
}

func TestHandleEvent_ProductUpdateRefreshesMappedVariants(t *testing.T) {
	skuID := uuid.New()
	res := &fakeResolver{known: map[string]uuid.UUID{"987": skuID}}
	repo := &fakeSkuRepo{}
	svc := newTestService(t, &fakeReconciler{}, res, repo)

	event := newEvent("products/update", map[string]any{
		"id":    111,
		"title": "Classic Tee",
		"variants": []map[string]any{
			{"id": 987, "sku": "TEE-BLK-M", "title": "Black / M"},
			{"id": 404, "sku": "TEE-UNKNOWN"},
		},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, 2, res.calls)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, "TEE-BLK-M", repo.updates[skuID])
}

func TestHandleEvent_ProductDeleteIsLogOnly(t *testing.T) {
	rec := &fakeReconciler{}
	repo := &fakeSkuRepo{}
	svc := newTestService(t, rec, &fakeResolver{}, repo)

	event := newEvent("products/delete", map[string]any{"id": 111})
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, repo.updates)
}

func TestHandleEvent_FulfillmentIsLogOnly(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("fulfillments/create", map[string]any{
		"id":               31337,
		"order_id":         5001,
		"status":           "success",
		"tracking_company": "UPS",
		"tracking_number":  "1Z999",
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, rec.orders)
	assert.Empty(t, rec.adjusts)
}

func TestHandleEvent_ComplianceTopicsAcknowledged(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	for _, topic := range []string{"customers/data_request", "customers/redact", "shop/redact"} {
		event := newEvent(topic, map[string]any{
			"shop_domain": "acme.myshopify.com",
			"customer":    map[string]any{"id": 42, "email": "jo@example.com"},
		})
		require.NoError(t, svc.HandleEvent(context.Background(), event), topic)
	}
	assert.Empty(t, rec.orders)
}

func TestHandleEvent_UnknownTopicNoop(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(t, rec, &fakeResolver{}, &fakeSkuRepo{})

	event := newEvent("carts/update", map[string]any{"id": 1})
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, rec.orders)
	assert.Empty(t, rec.refunds)
	assert.Empty(t, rec.adjusts)
}

func TestHandleEvent_NilEvent(t *testing.T) {
	svc := newTestService(t, &fakeReconciler{}, &fakeResolver{}, &fakeSkuRepo{})
	err := svc.HandleEvent(context.Background(), nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
