package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tair/client-favorites/internal/client/domain"
)

const uniqueViolation = "23505"

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GORM client repository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// AutoMigrate runs database migrations for the clients table
func (r *GormClientRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Client{})
}

// Create inserts a new client. The unique email constraint is the final
// arbiter under concurrent registration.
func (r *GormClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindByID retrieves a client by identifier
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client, nil
}

// FindByEmail retrieves a client by email
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client by email: %w", err)
	}
	return &client, nil
}

// FindAll retrieves clients with pagination
func (r *GormClientRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	var clients []domain.Client
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to find clients: %w", err)
	}
	return clients, nil
}

// Update updates a client's profile fields
func (r *GormClientRepository) Update(ctx context.Context, client *domain.Client) error {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// Delete removes a client. Favorite associations are removed by the
// cascading foreign key on the join table.
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// Count returns the total number of clients
func (r *GormClientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Client{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
