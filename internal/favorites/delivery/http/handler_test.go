package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/tair/client-favorites/internal/catalog/domain"
	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/domain"
	"github.com/tair/client-favorites/pkg/auth"
)

type fakeClientRepository struct {
	known map[uuid.UUID]*clientdomain.Client
}

func (r *fakeClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*clientdomain.Client, error) {
	if client, ok := r.known[id]; ok {
		return client, nil
	}
	return nil, clientdomain.ErrClientNotFound
}

func (r *fakeClientRepository) Create(ctx context.Context, c *clientdomain.Client) error { return nil }
func (r *fakeClientRepository) FindByEmail(ctx context.Context, email string) (*clientdomain.Client, error) {
	return nil, clientdomain.ErrClientNotFound
}
func (r *fakeClientRepository) FindAll(ctx context.Context, limit, offset int) ([]clientdomain.Client, error) {
	return nil, nil
}
func (r *fakeClientRepository) Update(ctx context.Context, c *clientdomain.Client) error { return nil }
func (r *fakeClientRepository) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (r *fakeClientRepository) Count(ctx context.Context) (int64, error)                 { return 0, nil }

type fakeFavoriteRepository struct {
	mu    sync.Mutex
	pairs map[uuid.UUID]map[int64]bool
}

func newFakeFavoriteRepository() *fakeFavoriteRepository {
	return &fakeFavoriteRepository{pairs: make(map[uuid.UUID]map[int64]bool)}
}

func (r *fakeFavoriteRepository) Add(ctx context.Context, clientID uuid.UUID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pairs[clientID] == nil {
		r.pairs[clientID] = make(map[int64]bool)
	}
	if r.pairs[clientID][productID] {
		return domain.ErrAlreadyFavorited
	}
	r.pairs[clientID][productID] = true
	return nil
}

func (r *fakeFavoriteRepository) Remove(ctx context.Context, clientID uuid.UUID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pairs[clientID][productID] {
		return domain.ErrNotFavorited
	}
	delete(r.pairs[clientID], productID)
	return nil
}

func (r *fakeFavoriteRepository) ListIDs(ctx context.Context, clientID uuid.UUID) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id := range r.pairs[clientID] {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeResolver struct {
	missing map[int64]bool
	failing map[int64]error
}

func (f *fakeResolver) Resolve(ctx context.Context, id int64) (*catalogdomain.Snapshot, error) {
	if err, ok := f.failing[id]; ok {
		return nil, err
	}
	if f.missing[id] {
		return nil, catalogdomain.ErrProductNotFound
	}
	return &catalogdomain.Snapshot{
		ID:    id,
		Title: fmt.Sprintf("product %d", id),
		Price: float64(id),
	}, nil
}

func (f *fakeResolver) ResolveAll(ctx context.Context) ([]catalogdomain.Snapshot, error) {
	if err, ok := f.failing[0]; ok {
		return nil, err
	}
	return []catalogdomain.Snapshot{
		{ID: 1, Title: "product 1", Price: 1},
		{ID: 2, Title: "product 2", Price: 2},
	}, nil
}

type fixture struct {
	router   *mux.Router
	clientID uuid.UUID
	token    string
}

func newFixture(t *testing.T, resolver catalogdomain.Resolver) fixture {
	t.Helper()

	clientID := uuid.New()
	clients := &fakeClientRepository{known: map[uuid.UUID]*clientdomain.Client{
		clientID: {ID: clientID, Name: "Maria Silva", Email: "maria@example.com"},
	}}

	router := mux.NewRouter()
	NewFavoritesHandler(clients, newFakeFavoriteRepository(), resolver, nil).RegisterRoutes(router)

	token, err := auth.GenerateToken("admin")
	require.NoError(t, err)

	return fixture{router: router, clientID: clientID, token: token}
}

func (f fixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f fixture) favoritePath(productID int64) string {
	return fmt.Sprintf("/clients/%s/favorites/%d", f.clientID, productID)
}

func TestAddFavoriteReturnsComposedView(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	rec := f.do("POST", f.favoritePath(7))
	require.Equal(t, http.StatusCreated, rec.Code)

	var view ClientWithFavorites
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, f.clientID, view.ID)
	assert.Equal(t, "Maria Silva", view.Name)
	assert.Equal(t, "maria@example.com", view.Email)
	require.Len(t, view.Favorites, 1)
	assert.Equal(t, int64(7), view.Favorites[0].ID)
	assert.Equal(t, "product 7", view.Favorites[0].Title)
}

func TestAddFavoriteUnknownProduct(t *testing.T) {
	f := newFixture(t, &fakeResolver{missing: map[int64]bool{9999: true}})

	rec := f.do("POST", f.favoritePath(9999))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddFavoriteUnknownClient(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	rec := f.do("POST", fmt.Sprintf("/clients/%s/favorites/7", uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddFavoriteDuplicate(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	require.Equal(t, http.StatusCreated, f.do("POST", f.favoritePath(7)).Code)
	rec := f.do("POST", f.favoritePath(7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddFavoriteUpstreamUnavailable(t *testing.T) {
	f := newFixture(t, &fakeResolver{failing: map[int64]error{5: catalogdomain.ErrUpstreamUnavailable}})

	rec := f.do("POST", f.favoritePath(5))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAddFavoriteUpstreamErrorEchoesStatus(t *testing.T) {
	f := newFixture(t, &fakeResolver{failing: map[int64]error{
		5: &catalogdomain.UpstreamError{Status: http.StatusBadGateway, Body: "bad gateway"},
	}})

	rec := f.do("POST", f.favoritePath(5))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAddFavoriteInvalidProductID(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	rec := f.do("POST", fmt.Sprintf("/clients/%s/favorites/-3", f.clientID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveFavoriteReturnsComposedView(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	require.Equal(t, http.StatusCreated, f.do("POST", f.favoritePath(7)).Code)
	rec := f.do("DELETE", f.favoritePath(7))
	require.Equal(t, http.StatusOK, rec.Code)

	var view ClientWithFavorites
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, f.clientID, view.ID)
	assert.Empty(t, view.Favorites)
}

func TestRemoveFavoriteNotFavorited(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	rec := f.do("DELETE", f.favoritePath(7))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFavoritesEndpoint(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	require.Equal(t, http.StatusCreated, f.do("POST", f.favoritePath(2)).Code)
	require.Equal(t, http.StatusCreated, f.do("POST", f.favoritePath(1)).Code)

	rec := f.do("GET", fmt.Sprintf("/clients/%s/favorites", f.clientID))
	require.Equal(t, http.StatusOK, rec.Code)

	var displays []domain.FavoriteDisplay
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &displays))
	require.Len(t, displays, 2)
	assert.Equal(t, int64(1), displays[0].ID)
	assert.Equal(t, int64(2), displays[1].ID)
}

func TestListFavoritesRequiresAuth(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	req := httptest.NewRequest("GET", fmt.Sprintf("/clients/%s/favorites", f.clientID), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	f := newFixture(t, &fakeResolver{})

	rec := f.do("GET", "/products")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshots []catalogdomain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	assert.Len(t, snapshots, 2)
}

func TestListProductsUpstreamUnavailable(t *testing.T) {
	f := newFixture(t, &fakeResolver{failing: map[int64]error{0: catalogdomain.ErrUpstreamUnavailable}})

	rec := f.do("GET", "/products")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
