package command

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/tair/client-favorites/internal/client/domain"
)

// UpdateClientCommand represents the command to update a client's profile.
// Nil fields are left unchanged.
type UpdateClientCommand struct {
	ID    uuid.UUID
	Name  *string
	Email *string
}

// UpdateClientHandler handles client profile updates
type UpdateClientHandler struct {
	repo domain.ClientRepository
}

// NewUpdateClientHandler creates a new update client handler
func NewUpdateClientHandler(repo domain.ClientRepository) *UpdateClientHandler {
	return &UpdateClientHandler{repo: repo}
}

// Handle executes the update client command
func (h *UpdateClientHandler) Handle(ctx context.Context, cmd UpdateClientCommand) (*domain.Client, error) {
	client, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, errors.New("name is required")
		}
		if len(name) > domain.MaxNameLength {
			return nil, fmt.Errorf("name must be at most %d characters", domain.MaxNameLength)
		}
		client.Name = name
	}

	if cmd.Email != nil && strings.TrimSpace(*cmd.Email) != client.Email {
		addr, err := mail.ParseAddress(strings.TrimSpace(*cmd.Email))
		if err != nil {
			return nil, errors.New("invalid email address")
		}
		// Uniqueness is re-validated on email change
		if existing, _ := h.repo.FindByEmail(ctx, addr.Address); existing != nil && existing.ID != client.ID {
			return nil, domain.ErrEmailAlreadyRegistered
		}
		client.Email = addr.Address
	}

	if err := h.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
