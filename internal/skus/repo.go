package skus

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"github.com/beacontrade/stocksync-backend/pkg/enums"
)

// Repository reads alias reference data and SKU rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to SKU lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindAlias looks up one alias scoped to a client and namespace.
func (r *Repository) FindAlias(ctx context.Context, clientID uuid.UUID, aliasType enums.SkuAliasType, aliasValue string) (*models.SkuAlias, error) {
	var alias models.SkuAlias
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND alias_type = ? AND alias_value = ?", clientID, aliasType, aliasValue).
		First(&alias).Error; err != nil {
		return nil, err
	}
	return &alias, nil
}

// FindByExternalSku matches a SKU on its platform SKU string, scoped to the client.
func (r *Repository) FindByExternalSku(ctx context.Context, clientID uuid.UUID, externalSku string) (*models.Sku, error) {
	var sku models.Sku
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND external_sku = ?", clientID, externalSku).
		First(&sku).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

// UpdateExternalFields refreshes the platform-facing fields of a SKU from a
// product webhook.
func (r *Repository) UpdateExternalFields(ctx context.Context, skuID uuid.UUID, externalSku *string, name string) error {
	updates := map[string]any{"external_sku": externalSku}
	if name != "" {
		updates["name"] = name
	}
	return r.db.WithContext(ctx).
		Model(&models.Sku{}).
		Where("id = ?", skuID).
		Updates(updates).Error
}
