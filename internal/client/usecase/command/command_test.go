package command

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/client-favorites/internal/client/domain"
)

// fakeClientRepository is an in-memory ClientRepository
type fakeClientRepository struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*domain.Client
}

func newFakeClientRepository() *fakeClientRepository {
	return &fakeClientRepository{clients: make(map[uuid.UUID]*domain.Client)}
}

func (r *fakeClientRepository) Create(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.Email == client.Email {
			return domain.ErrEmailAlreadyRegistered
		}
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, client := range r.clients {
		if client.Email == email {
			copied := *client
			return &copied, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *fakeClientRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var clients []domain.Client
	for _, client := range r.clients {
		clients = append(clients, *client)
	}
	return clients, nil
}

func (r *fakeClientRepository) Update(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return domain.ErrClientNotFound
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *fakeClientRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.clients)), nil
}

// recordingEvents records published events
type recordingEvents struct {
	created []uuid.UUID
	deleted []uuid.UUID
}

func (e *recordingEvents) ClientCreated(ctx context.Context, clientID uuid.UUID, email string) {
	e.created = append(e.created, clientID)
}

func (e *recordingEvents) ClientDeleted(ctx context.Context, clientID uuid.UUID) {
	e.deleted = append(e.deleted, clientID)
}

func TestCreateClient(t *testing.T) {
	repo := newFakeClientRepository()
	events := &recordingEvents{}
	handler := NewCreateClientHandler(repo, events)

	client, err := handler.Handle(context.Background(), CreateClientCommand{
		Name:  "Maria Silva",
		Email: "maria@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, client.ID)
	assert.Equal(t, "Maria Silva", client.Name)
	assert.Equal(t, "maria@example.com", client.Email)
	assert.Len(t, events.created, 1)
}

func TestCreateClientDuplicateEmail(t *testing.T) {
	repo := newFakeClientRepository()
	handler := NewCreateClientHandler(repo, nil)

	_, err := handler.Handle(context.Background(), CreateClientCommand{Name: "A", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), CreateClientCommand{Name: "B", Email: "dup@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
}

func TestCreateClientDistinctEmailsAllSucceed(t *testing.T) {
	repo := newFakeClientRepository()
	handler := NewCreateClientHandler(repo, nil)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := handler.Handle(context.Background(), CreateClientCommand{Name: "n", Email: email})
		require.NoError(t, err)
	}

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCreateClientValidation(t *testing.T) {
	repo := newFakeClientRepository()
	handler := NewCreateClientHandler(repo, nil)

	tests := []struct {
		name string
		cmd  CreateClientCommand
	}{
		{"empty name", CreateClientCommand{Name: "", Email: "x@example.com"}},
		{"blank name", CreateClientCommand{Name: "   ", Email: "x@example.com"}},
		{"name too long", CreateClientCommand{Name: string(make([]byte, 101)), Email: "x@example.com"}},
		{"empty email", CreateClientCommand{Name: "x", Email: ""}},
		{"invalid email", CreateClientCommand{Name: "x", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.cmd)
			assert.Error(t, err)
		})
	}
}

func TestUpdateClient(t *testing.T) {
	repo := newFakeClientRepository()
	created, err := NewCreateClientHandler(repo, nil).Handle(context.Background(), CreateClientCommand{
		Name:  "Old Name",
		Email: "old@example.com",
	})
	require.NoError(t, err)

	newName := "New Name"
	newEmail := "new@example.com"
	updated, err := NewUpdateClientHandler(repo).Handle(context.Background(), UpdateClientCommand{
		ID:    created.ID,
		Name:  &newName,
		Email: &newEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "new@example.com", updated.Email)
}

func TestUpdateClientEmailTakenByAnother(t *testing.T) {
	repo := newFakeClientRepository()
	createHandler := NewCreateClientHandler(repo, nil)

	_, err := createHandler.Handle(context.Background(), CreateClientCommand{Name: "a", Email: "taken@example.com"})
	require.NoError(t, err)
	second, err := createHandler.Handle(context.Background(), CreateClientCommand{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	email := "taken@example.com"
	_, err = NewUpdateClientHandler(repo).Handle(context.Background(), UpdateClientCommand{
		ID:    second.ID,
		Email: &email,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
}

func TestUpdateClientKeepingOwnEmail(t *testing.T) {
	repo := newFakeClientRepository()
	created, err := NewCreateClientHandler(repo, nil).Handle(context.Background(), CreateClientCommand{
		Name:  "a",
		Email: "same@example.com",
	})
	require.NoError(t, err)

	email := "same@example.com"
	name := "renamed"
	updated, err := NewUpdateClientHandler(repo).Handle(context.Background(), UpdateClientCommand{
		ID:    created.ID,
		Name:  &name,
		Email: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
}

func TestUpdateClientNotFound(t *testing.T) {
	repo := newFakeClientRepository()
	name := "x"
	_, err := NewUpdateClientHandler(repo).Handle(context.Background(), UpdateClientCommand{
		ID:   uuid.New(),
		Name: &name,
	})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestDeleteClient(t *testing.T) {
	repo := newFakeClientRepository()
	events := &recordingEvents{}
	created, err := NewCreateClientHandler(repo, events).Handle(context.Background(), CreateClientCommand{
		Name:  "gone",
		Email: "gone@example.com",
	})
	require.NoError(t, err)

	err = NewDeleteClientHandler(repo, events).Handle(context.Background(), DeleteClientCommand{ID: created.ID})
	require.NoError(t, err)
	assert.Len(t, events.deleted, 1)

	_, err = repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestDeleteClientNotFound(t *testing.T) {
	repo := newFakeClientRepository()
	err := NewDeleteClientHandler(repo, nil).Handle(context.Background(), DeleteClientCommand{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}
