package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/client-favorites/internal/favorites/domain"
)

const uniqueViolation = "23505"

// GormFavoriteRepository implements FavoriteRepository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GORM favorite repository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// AutoMigrate runs database migrations for the favorites tables
func (r *GormFavoriteRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.ProductRef{}, &domain.ClientFavorite{})
}

// Add creates the product reference if absent and inserts the association.
// The composite primary key is the final arbiter under concurrent adds;
// the loser receives ErrAlreadyFavorited.
func (r *GormFavoriteRepository) Add(ctx context.Context, clientID uuid.UUID, productID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// get-or-create the reference row; racing inserts are harmless
		ref := domain.ProductRef{ID: productID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ref).Error; err != nil {
			return fmt.Errorf("failed to upsert product reference: %w", err)
		}

		fav := domain.ClientFavorite{ClientID: clientID, ProductID: productID}
		if err := tx.Omit("Client", "Product").Create(&fav).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyFavorited
			}
			return fmt.Errorf("failed to create favorite: %w", err)
		}
		return nil
	})
	return err
}

// Remove deletes the association. The product reference row is left in
// place even if now orphaned.
func (r *GormFavoriteRepository) Remove(ctx context.Context, clientID uuid.UUID, productID int64) error {
	result := r.db.WithContext(ctx).
		Where("client_id = ? AND product_id = ?", clientID, productID).
		Delete(&domain.ClientFavorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

// ListIDs returns the product identifiers associated with the client,
// order not significant
func (r *GormFavoriteRepository) ListIDs(ctx context.Context, clientID uuid.UUID) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.ClientFavorite{}).
		Where("client_id = ?", clientID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
