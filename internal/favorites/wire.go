//go:build wireinject
// +build wireinject

package favorites

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	catalogdomain "github.com/tair/client-favorites/internal/catalog/domain"
	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/delivery/http"
	"github.com/tair/client-favorites/internal/favorites/domain"
	"github.com/tair/client-favorites/internal/favorites/repository"
	"github.com/tair/client-favorites/internal/favorites/usecase/command"
)

// ProvideFavoriteRepository provides the favorite repository
func ProvideFavoriteRepository(db *gorm.DB) domain.FavoriteRepository {
	return repository.NewGormFavoriteRepositoryWithTracing(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideFavoriteRepository,
)

// InitializeHTTPHandler initializes the favorites HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	clients clientdomain.ClientRepository,
	resolver catalogdomain.Resolver,
	events command.EventPublisher,
) (*http.FavoritesHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewFavoritesHandler,
	)
	return nil, nil
}
