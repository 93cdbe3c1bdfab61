package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/tair/client-favorites/internal/client/domain"
)

// GetClientQuery represents the query to get a client by ID
type GetClientQuery struct {
	ID uuid.UUID
}

// GetClientHandler handles get client queries
type GetClientHandler struct {
	repo domain.ClientRepository
}

// NewGetClientHandler creates a new get client handler
func NewGetClientHandler(repo domain.ClientRepository) *GetClientHandler {
	return &GetClientHandler{repo: repo}
}

// Handle executes the get client query
func (h *GetClientHandler) Handle(ctx context.Context, q GetClientQuery) (*domain.Client, error) {
	return h.repo.FindByID(ctx, q.ID)
}
