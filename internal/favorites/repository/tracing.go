package repository

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("favorite-repository")

// GormFavoriteRepositoryWithTracing wraps GormFavoriteRepository with tracing
type GormFavoriteRepositoryWithTracing struct {
	*GormFavoriteRepository
}

// NewGormFavoriteRepositoryWithTracing creates a new repository with tracing
func NewGormFavoriteRepositoryWithTracing(db *gorm.DB) *GormFavoriteRepositoryWithTracing {
	return &GormFavoriteRepositoryWithTracing{
		GormFavoriteRepository: NewGormFavoriteRepository(db),
	}
}

// Add with tracing
func (r *GormFavoriteRepositoryWithTracing) Add(ctx context.Context, clientID uuid.UUID, productID int64) error {
	ctx, span := tracer.Start(ctx, "repository.AddFavorite",
		trace.WithAttributes(
			attribute.String("client.id", clientID.String()),
			attribute.Int64("product.id", productID),
		),
	)
	defer span.End()

	if err := r.GormFavoriteRepository.Add(ctx, clientID, productID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Remove with tracing
func (r *GormFavoriteRepositoryWithTracing) Remove(ctx context.Context, clientID uuid.UUID, productID int64) error {
	ctx, span := tracer.Start(ctx, "repository.RemoveFavorite",
		trace.WithAttributes(
			attribute.String("client.id", clientID.String()),
			attribute.Int64("product.id", productID),
		),
	)
	defer span.End()

	if err := r.GormFavoriteRepository.Remove(ctx, clientID, productID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// ListIDs with tracing
func (r *GormFavoriteRepositoryWithTracing) ListIDs(ctx context.Context, clientID uuid.UUID) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "repository.ListFavoriteIDs",
		trace.WithAttributes(attribute.String("client.id", clientID.String())),
	)
	defer span.End()

	ids, err := r.GormFavoriteRepository.ListIDs(ctx, clientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("favorites.count", len(ids)))
	return ids, nil
}
