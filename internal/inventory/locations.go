package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beacontrade/stocksync-backend/pkg/db/models"
)

// LocationRepository resolves the stock location entries are booked against.
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository binds a GORM DB to location lookups.
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindOrCreateDefault returns the tenant's default location, creating the MAIN
// location the first time the tenant needs one.
func (r *LocationRepository) FindOrCreateDefault(ctx context.Context, clientID uuid.UUID) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND code = ?", clientID, models.DefaultLocationCode).
		First(&location).Error
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	location = models.Location{
		ID:       uuid.New(),
		ClientID: clientID,
		Code:     models.DefaultLocationCode,
		Name:     "Main Warehouse",
		Active:   true,
	}
	if createErr := r.db.WithContext(ctx).Create(&location).Error; createErr != nil {
		// a concurrent request may have created it between lookup and insert
		var existing models.Location
		if findErr := r.db.WithContext(ctx).
			Where("client_id = ? AND code = ?", clientID, models.DefaultLocationCode).
			First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &location, nil
}
