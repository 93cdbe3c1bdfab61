package query

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	catalogdomain "github.com/tair/client-favorites/internal/catalog/domain"
	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/domain"
	"github.com/tair/client-favorites/pkg/logger"
)

// ListFavoritesQuery represents the query for a client's display-ready
// favorites list
type ListFavoritesQuery struct {
	ClientID uuid.UUID
}

// ListFavoritesHandler composes the association set with live catalog data
type ListFavoritesHandler struct {
	clients   clientdomain.ClientRepository
	favorites domain.FavoriteRepository
	resolver  catalogdomain.Resolver
}

// NewListFavoritesHandler creates a new list favorites handler
func NewListFavoritesHandler(
	clients clientdomain.ClientRepository,
	favorites domain.FavoriteRepository,
	resolver catalogdomain.Resolver,
) *ListFavoritesHandler {
	return &ListFavoritesHandler{
		clients:   clients,
		favorites: favorites,
		resolver:  resolver,
	}
}

// Handle resolves every associated identifier concurrently and builds the
// display list. Items whose resolution fails or comes back NotFound are
// logged and omitted; the list degrades instead of failing wholesale.
// The result is sorted by product identifier.
func (h *ListFavoritesHandler) Handle(ctx context.Context, q ListFavoritesQuery) ([]domain.FavoriteDisplay, error) {
	if _, err := h.clients.FindByID(ctx, q.ClientID); err != nil {
		return nil, err
	}

	ids, err := h.favorites.ListIDs(ctx, q.ClientID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.FavoriteDisplay{}, nil
	}

	snapshots := make([]*catalogdomain.Snapshot, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			snapshot, err := h.resolver.Resolve(gctx, id)
			if err != nil {
				logger.Warn(gctx).
					Err(err).
					Int64("product_id", id).
					Str("client_id", q.ClientID.String()).
					Msg("Skipping favorite that failed to resolve")
				return nil
			}
			snapshots[i] = snapshot
			return nil
		})
	}
	// per-item failures are swallowed above, so Wait cannot fail
	_ = g.Wait()

	displays := make([]domain.FavoriteDisplay, 0, len(ids))
	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		displays = append(displays, toDisplay(snapshot))
	}
	sort.Slice(displays, func(i, j int) bool { return displays[i].ID < displays[j].ID })
	return displays, nil
}

func toDisplay(s *catalogdomain.Snapshot) domain.FavoriteDisplay {
	d := domain.FavoriteDisplay{
		ID:    s.ID,
		Title: s.Title,
		Image: s.Image,
		Price: s.Price,
	}
	if s.Rating != nil {
		rate := s.Rating.Rate
		count := s.Rating.Count
		d.Review = &rate
		d.ReviewCount = &count
	}
	return d
}
