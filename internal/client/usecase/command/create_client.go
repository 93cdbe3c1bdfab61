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

// EventPublisher publishes client lifecycle events. Implementations must
// not block the request path on broker failures.
type EventPublisher interface {
	ClientCreated(ctx context.Context, clientID uuid.UUID, email string)
	ClientDeleted(ctx context.Context, clientID uuid.UUID)
}

// CreateClientCommand represents the command to register a client
type CreateClientCommand struct {
	Name  string
	Email string
}

// CreateClientHandler handles client registration
type CreateClientHandler struct {
	repo   domain.ClientRepository
	events EventPublisher
}

// NewCreateClientHandler creates a new create client handler
func NewCreateClientHandler(repo domain.ClientRepository, events EventPublisher) *CreateClientHandler {
	return &CreateClientHandler{repo: repo, events: events}
}

// Handle executes the create client command
func (h *CreateClientHandler) Handle(ctx context.Context, cmd CreateClientCommand) (*domain.Client, error) {
	name, email, err := validateProfile(cmd.Name, cmd.Email)
	if err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error; the unique constraint still
	// decides under concurrent registration.
	if existing, _ := h.repo.FindByEmail(ctx, email); existing != nil {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	client := &domain.Client{
		Name:  name,
		Email: email,
	}

	if err := h.repo.Create(ctx, client); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if h.events != nil {
		h.events.ClientCreated(ctx, client.ID, client.Email)
	}
	return client, nil
}

func validateProfile(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.New("name is required")
	}
	if len(name) > domain.MaxNameLength {
		return "", "", fmt.Errorf("name must be at most %d characters", domain.MaxNameLength)
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", "", errors.New("invalid email address")
	}

	return name, addr.Address, nil
}
