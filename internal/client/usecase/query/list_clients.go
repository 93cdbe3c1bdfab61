package query

import (
	"context"

	"github.com/tair/client-favorites/internal/client/domain"
)

const defaultPageSize = 100

// ListClientsQuery represents the query to list clients with pagination
type ListClientsQuery struct {
	Limit  int
	Offset int
}

// ListClientsHandler handles list clients queries
type ListClientsHandler struct {
	repo domain.ClientRepository
}

// NewListClientsHandler creates a new list clients handler
func NewListClientsHandler(repo domain.ClientRepository) *ListClientsHandler {
	return &ListClientsHandler{repo: repo}
}

// Handle executes the list clients query
func (h *ListClientsHandler) Handle(ctx context.Context, q ListClientsQuery) ([]domain.Client, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return h.repo.FindAll(ctx, limit, offset)
}
