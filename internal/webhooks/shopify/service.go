package shopifywebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/beacontrade/stocksync-backend/internal/inventory"
	"github.com/beacontrade/stocksync-backend/internal/skus"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/logger"
)

type reconciler interface {
	ReconcileOrder(ctx context.Context, clientID uuid.UUID, in inventory.OrderInput) (*inventory.Result, error)
	ReconcileRefund(ctx context.Context, clientID uuid.UUID, in inventory.OrderInput) (*inventory.Result, error)
	AdjustLevel(ctx context.Context, clientID uuid.UUID, eventID, inventoryItemID string, available int) (*inventory.Result, error)
}

type skuResolver interface {
	Resolve(ctx context.Context, clientID uuid.UUID, variantID, externalSku, productID string) (*skus.Resolution, error)
}

type skuRepository interface {
	UpdateExternalFields(ctx context.Context, skuID uuid.UUID, externalSku *string, name string) error
}

type ServiceParams struct {
	Reconciler reconciler
	Resolver   skuResolver
	SkuRepo    skuRepository
	Logger     *logger.Logger
}

// Service routes verified, deduplicated webhook events to their topic
// handler.
type Service struct {
	reconciler reconciler
	resolver   skuResolver
	skuRepo    skuRepository
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	if params.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sku resolver required")
	}
	if params.SkuRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sku repo required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		reconciler: params.Reconciler,
		resolver:   params.Resolver,
		skuRepo:    params.SkuRepo,
		logg:       params.Logger,
	}, nil
}

// Event is one delivery after signature verification and tenant resolution.
type Event struct {
	ID         string
	ShopDomain string
	Topic      string
	ClientID   uuid.UUID
	Payload    json.RawMessage
}

// HandleEvent dispatches on topic. Unknown topics are accepted without side
// effects so the platform does not retry them forever.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}
	if event.ClientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	switch strings.ToLower(event.Topic) {
	case "orders/create", "orders/paid":
		return s.handleOrder(ctx, event)
	case "refunds/create":
		return s.handleRefund(ctx, event)
	case "inventory_levels/update":
		return s.handleInventoryLevel(ctx, event)
	case "products/create", "products/update":
		return s.handleProduct(ctx, event)
	case "products/delete":
		s.logg.Info(ctx, "product deleted upstream, ledger untouched")
		return nil
	case "fulfillments/create", "fulfillments/update":
		return s.handleFulfillment(ctx, event)
	case "customers/data_request", "customers/redact", "shop/redact":
		return s.handleCompliance(ctx, event)
	default:
		s.logg.Info(s.logg.WithField(ctx, "topic", event.Topic), "unhandled webhook topic, acknowledging")
		return nil
	}
}

func (s *Service) handleOrder(ctx context.Context, event *Event) error {
	var payload orderPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		return err
	}

	result, err := s.reconciler.ReconcileOrder(ctx, event.ClientID, inventory.OrderInput{
		ExternalID: idString(payload.ID),
		Name:       payload.Name,
		Lines:      orderLines(payload.LineItems),
	})
	if err != nil {
		return err
	}
	s.logResult(ctx, event, "order reconciled", result)
	return nil
}

func (s *Service) handleRefund(ctx context.Context, event *Event) error {
	var payload refundPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		return err
	}

	lines := make([]inventory.OrderLine, 0, len(payload.RefundLineItems))
	for _, item := range payload.RefundLineItems {
		if item.RestockType == "no_restock" {
			continue
		}
		lines = append(lines, inventory.OrderLine{
			VariantID:   idString(item.LineItem.VariantID),
			ProductID:   idString(item.LineItem.ProductID),
			ExternalSku: item.LineItem.SKU,
			Title:       item.LineItem.Title,
			Quantity:    item.Quantity,
			UnitPrice:   item.LineItem.unitPrice(),
		})
	}
	if len(lines) == 0 {
		s.logg.Info(ctx, "refund has no restockable lines")
		return nil
	}

	result, err := s.reconciler.ReconcileRefund(ctx, event.ClientID, inventory.OrderInput{
		ExternalID: idString(payload.ID),
		Name:       idString(payload.OrderID),
		Lines:      lines,
	})
	if err != nil {
		return err
	}
	s.logResult(ctx, event, "refund reconciled", result)
	return nil
}

func (s *Service) handleInventoryLevel(ctx context.Context, event *Event) error {
	var payload inventoryLevelPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		return err
	}

	result, err := s.reconciler.AdjustLevel(ctx, event.ClientID, event.ID, idString(payload.InventoryItemID), payload.Available)
	if err != nil {
		return err
	}
	s.logResult(ctx, event, "inventory level adjusted", result)
	return nil
}

func (s *Service) handleProduct(ctx context.Context, event *Event) error {
	var payload productPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		return err
	}

	productID := idString(payload.ID)
	refreshed := 0
	for _, variant := range payload.Variants {
		res, err := s.resolver.Resolve(ctx, event.ClientID, idString(variant.ID), variant.SKU, productID)
		if err != nil {
			if errors.Is(err, skus.ErrNotResolved) {
				s.logg.Warn(s.logg.WithField(ctx, "variant_id", idString(variant.ID)), "variant not mapped, skipping catalog refresh")
				continue
			}
			return err
		}

		var externalSku *string
		if variant.SKU != "" {
			sku := variant.SKU
			externalSku = &sku
		}
		name := payload.Title
		if variant.Title != "" && variant.Title != "Default Title" {
			name = payload.Title + " - " + variant.Title
		}
		if err := s.skuRepo.UpdateExternalFields(ctx, res.SkuID, externalSku, name); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh sku from product webhook")
		}
		refreshed++
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id": productID,
		"variants":   len(payload.Variants),
		"refreshed":  refreshed,
	}), "product catalog fields refreshed")
	return nil
}

func (s *Service) handleFulfillment(ctx context.Context, event *Event) error {
	var payload fulfillmentPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		return err
	}

	// stock was decremented at order time, so fulfillments only inform routing
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"fulfillment_id":   idString(payload.ID),
		"order_id":         idString(payload.OrderID),
		"status":           payload.Status,
		"tracking_company": payload.TrackingCompany,
		"tracking_number":  payload.TrackingNumber,
		"line_items":       len(payload.LineItems),
	}), "fulfillment routed")
	return nil
}

func (s *Service) handleCompliance(ctx context.Context, event *Event) error {
	var payload compliancePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid compliance payload")
	}

	// never auto-processed: the delivery log holds the full payload and an
	// operator works the request by hand
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"topic":       event.Topic,
		"shop_domain": payload.ShopDomain,
		"customer_id": idString(payload.Customer.ID),
	}), "compliance request recorded for manual follow-up")
	return nil
}

func (s *Service) logResult(ctx context.Context, event *Event, msg string, result *inventory.Result) {
	if result == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"topic":              event.Topic,
		"already_reconciled": result.AlreadyReconciled,
		"entries_written":    result.EntriesWritten,
		"lines_skipped":      result.LinesSkipped,
	}), msg)
}

func orderLines(items []orderLineItem) []inventory.OrderLine {
	lines := make([]inventory.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.OrderLine{
			VariantID:   idString(item.VariantID),
			ProductID:   idString(item.ProductID),
			ExternalSku: item.SKU,
			Title:       item.Title,
			Quantity:    item.Quantity,
			UnitPrice:   item.unitPrice(),
		})
	}
	return lines
}
