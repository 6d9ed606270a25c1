package skus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
	pkgerrors "github.com/beacontrade/stocksync-backend/pkg/errors"
	"github.com/beacontrade/stocksync-backend/pkg/metrics"
)

// ErrNotResolved signals that no strategy matched. Callers recover locally by
// skipping the line item; it never fails a whole event.
var ErrNotResolved = errors.New("sku not resolved")

type resolverRepository interface {
	FindAlias(ctx context.Context, clientID uuid.UUID, aliasType enums.SkuAliasType, aliasValue string) (*models.SkuAlias, error)
	FindByExternalSku(ctx context.Context, clientID uuid.UUID, externalSku string) (*models.Sku, error)
}

// Resolution carries the matched SKU and the strategy that found it, so match
// quality stays observable.
type Resolution struct {
	SkuID    uuid.UUID
	Strategy enums.SkuMatchStrategy
}

// Resolver maps external variant identifiers onto internal SKUs through an
// ordered fallback chain.
type Resolver struct {
	repo    resolverRepository
	metrics *metrics.WebhookMetrics
}

func NewResolver(repo resolverRepository, m *metrics.WebhookMetrics) (*Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sku repo required")
	}
	return &Resolver{repo: repo, metrics: m}, nil
}

// Resolve tries, in order: the variant-id alias, the exact external SKU
// string, then the legacy "<productID>-<variantID>" pattern. Each strategy
// runs only when the prior one missed; the first hit wins.
//
// The legacy pattern is an external compatibility contract inherited from the
// original catalog import. Do not extend its format.
func (r *Resolver) Resolve(ctx context.Context, clientID uuid.UUID, variantID, externalSku, productID string) (*Resolution, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}

	if variantID != "" {
		alias, err := r.repo.FindAlias(ctx, clientID, enums.SkuAliasTypeShopifyVariantID, variantID)
		if err == nil {
			return r.hit(alias.SkuID, enums.SkuMatchStrategyAlias), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup variant alias")
		}
	}

	if externalSku != "" {
		sku, err := r.repo.FindByExternalSku(ctx, clientID, externalSku)
		if err == nil {
			return r.hit(sku.ID, enums.SkuMatchStrategyExternalSku), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup external sku")
		}
	}

	if productID != "" && variantID != "" {
		pattern := fmt.Sprintf("%s-%s", productID, variantID)
		sku, err := r.repo.FindByExternalSku(ctx, clientID, pattern)
		if err == nil {
			return r.hit(sku.ID, enums.SkuMatchStrategyLegacyPattern), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup legacy pattern")
		}
	}

	r.metrics.IncSkuMiss(string(enums.SkuAliasTypeShopifyVariantID))
	return nil, ErrNotResolved
}

// ResolveInventoryItem maps a platform inventory item id onto a SKU through
// its alias namespace. Used by inventory level webhooks, which carry item ids
// rather than variant ids.
func (r *Resolver) ResolveInventoryItem(ctx context.Context, clientID uuid.UUID, inventoryItemID string) (*Resolution, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if inventoryItemID == "" {
		return nil, ErrNotResolved
	}
	alias, err := r.repo.FindAlias(ctx, clientID, enums.SkuAliasTypeShopifyInventoryItemID, inventoryItemID)
	if err == nil {
		return r.hit(alias.SkuID, enums.SkuMatchStrategyAlias), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup inventory item alias")
	}
	r.metrics.IncSkuMiss(string(enums.SkuAliasTypeShopifyInventoryItemID))
	return nil, ErrNotResolved
}

func (r *Resolver) hit(skuID uuid.UUID, strategy enums.SkuMatchStrategy) *Resolution {
	r.metrics.IncSkuMatch(string(strategy))
	return &Resolution{SkuID: skuID, Strategy: strategy}
}
