package stores

import (
	"context"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles store lookups. The connection flow owns writes; the
// webhook path only reads.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActiveByDomain loads the active store connected for a shop domain.
func (r *Repository) FindActiveByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND active", shopDomain).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
