package command

import (
	"context"

	"github.com/google/uuid"

	catalogdomain "github.com/tair/client-favorites/internal/catalog/domain"
	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/domain"
)

// EventPublisher publishes favorite lifecycle events. Implementations must
// not block the request path on broker failures.
type EventPublisher interface {
	FavoriteAdded(ctx context.Context, clientID uuid.UUID, productID int64)
	FavoriteRemoved(ctx context.Context, clientID uuid.UUID, productID int64)
}

// AddFavoriteCommand represents the command to favorite a product
type AddFavoriteCommand struct {
	ClientID  uuid.UUID
	ProductID int64
}

// AddFavoriteHandler handles adding a product to a client's favorites
type AddFavoriteHandler struct {
	clients   clientdomain.ClientRepository
	favorites domain.FavoriteRepository
	resolver  catalogdomain.Resolver
	events    EventPublisher
}

// NewAddFavoriteHandler creates a new add favorite handler
func NewAddFavoriteHandler(
	clients clientdomain.ClientRepository,
	favorites domain.FavoriteRepository,
	resolver catalogdomain.Resolver,
	events EventPublisher,
) *AddFavoriteHandler {
	return &AddFavoriteHandler{
		clients:   clients,
		favorites: favorites,
		resolver:  resolver,
		events:    events,
	}
}

// Handle executes the add favorite command. The product must exist in the
// external catalog; re-adding an existing favorite is rejected.
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) error {
	if _, err := h.clients.FindByID(ctx, cmd.ClientID); err != nil {
		return err
	}

	if _, err := h.resolver.Resolve(ctx, cmd.ProductID); err != nil {
		// ErrProductNotFound and upstream failures both block the add
		return err
	}

	if err := h.favorites.Add(ctx, cmd.ClientID, cmd.ProductID); err != nil {
		return err
	}

	if h.events != nil {
		h.events.FavoriteAdded(ctx, cmd.ClientID, cmd.ProductID)
	}
	return nil
}
