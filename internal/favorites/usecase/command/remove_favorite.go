package command

import (
	"context"

	"github.com/google/uuid"

	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/domain"
)

// RemoveFavoriteCommand represents the command to unfavorite a product
type RemoveFavoriteCommand struct {
	ClientID  uuid.UUID
	ProductID int64
}

// RemoveFavoriteHandler handles removing a product from a client's favorites
type RemoveFavoriteHandler struct {
	clients   clientdomain.ClientRepository
	favorites domain.FavoriteRepository
	events    EventPublisher
}

// NewRemoveFavoriteHandler creates a new remove favorite handler
func NewRemoveFavoriteHandler(
	clients clientdomain.ClientRepository,
	favorites domain.FavoriteRepository,
	events EventPublisher,
) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{
		clients:   clients,
		favorites: favorites,
		events:    events,
	}
}

// Handle executes the remove favorite command
func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) error {
	if _, err := h.clients.FindByID(ctx, cmd.ClientID); err != nil {
		return err
	}

	if err := h.favorites.Remove(ctx, cmd.ClientID, cmd.ProductID); err != nil {
		return err
	}

	if h.events != nil {
		h.events.FavoriteRemoved(ctx, cmd.ClientID, cmd.ProductID)
	}
	return nil
}
