package repository

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/client-favorites/internal/client/domain"
)

var tracer = otel.Tracer("client-repository")

// GormClientRepositoryWithTracing wraps GormClientRepository with tracing
type GormClientRepositoryWithTracing struct {
	*GormClientRepository
}

// NewGormClientRepositoryWithTracing creates a new repository with tracing
func NewGormClientRepositoryWithTracing(db *gorm.DB) *GormClientRepositoryWithTracing {
	return &GormClientRepositoryWithTracing{
		GormClientRepository: NewGormClientRepository(db),
	}
}

// Create with tracing
func (r *GormClientRepositoryWithTracing) Create(ctx context.Context, client *domain.Client) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(attribute.String("client.email", client.Email)),
	)
	defer span.End()

	if err := r.GormClientRepository.Create(ctx, client); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("client.id", client.ID.String()))
	return nil
}

// FindByID with tracing
func (r *GormClientRepositoryWithTracing) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(attribute.String("client.id", id.String())),
	)
	defer span.End()

	client, err := r.GormClientRepository.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client, nil
}

// Delete with tracing
func (r *GormClientRepositoryWithTracing) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(attribute.String("client.id", id.String())),
	)
	defer span.End()

	if err := r.GormClientRepository.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
