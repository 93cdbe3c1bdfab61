package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/tair/client-favorites/internal/client/domain"
)

// DeleteClientCommand represents the command to delete a client
type DeleteClientCommand struct {
	ID uuid.UUID
}

// DeleteClientHandler handles client deletion
type DeleteClientHandler struct {
	repo   domain.ClientRepository
	events EventPublisher
}

// NewDeleteClientHandler creates a new delete client handler
func NewDeleteClientHandler(repo domain.ClientRepository, events EventPublisher) *DeleteClientHandler {
	return &DeleteClientHandler{repo: repo, events: events}
}

// Handle executes the delete client command. Favorite associations are
// removed by the cascading delete on the join table.
func (h *DeleteClientHandler) Handle(ctx context.Context, cmd DeleteClientCommand) error {
	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return err
	}
	if h.events != nil {
		h.events.ClientDeleted(ctx, cmd.ID)
	}
	return nil
}
