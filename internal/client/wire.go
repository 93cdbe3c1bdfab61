//go:build wireinject
// +build wireinject

package client

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/client-favorites/internal/client/delivery/http"
	"github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/client/repository"
	"github.com/tair/client-favorites/internal/client/usecase/command"
	"github.com/tair/client-favorites/internal/client/usecase/query"
)

// ProvideClientRepository provides the client repository
func ProvideClientRepository(db *gorm.DB) domain.ClientRepository {
	return repository.NewGormClientRepositoryWithTracing(db)
}

// Command handler providers
func ProvideCreateClientHandler(repo domain.ClientRepository, events command.EventPublisher) *command.CreateClientHandler {
	return command.NewCreateClientHandler(repo, events)
}

func ProvideUpdateClientHandler(repo domain.ClientRepository) *command.UpdateClientHandler {
	return command.NewUpdateClientHandler(repo)
}

func ProvideDeleteClientHandler(repo domain.ClientRepository, events command.EventPublisher) *command.DeleteClientHandler {
	return command.NewDeleteClientHandler(repo, events)
}

// Query handler providers
func ProvideGetClientHandler(repo domain.ClientRepository) *query.GetClientHandler {
	return query.NewGetClientHandler(repo)
}

func ProvideListClientsHandler(repo domain.ClientRepository) *query.ListClientsHandler {
	return query.NewListClientsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideClientRepository,
)

var HandlerSet = wire.NewSet(
	ProvideCreateClientHandler,
	ProvideUpdateClientHandler,
	ProvideDeleteClientHandler,
	ProvideGetClientHandler,
	ProvideListClientsHandler,
)

// InitializeHTTPHandler initializes the client HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, events command.EventPublisher) (*http.ClientHandler, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		http.NewClientHandlerWithDI,
	)
	return nil, nil
}
