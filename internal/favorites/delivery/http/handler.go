package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	catalogdomain "github.com/tair/client-favorites/internal/catalog/domain"
	clienthttp "github.com/tair/client-favorites/internal/client/delivery/http"
	clientdomain "github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/favorites/domain"
	"github.com/tair/client-favorites/internal/favorites/usecase/command"
	"github.com/tair/client-favorites/internal/favorites/usecase/query"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_service_requests_total",
			Help: "Total number of requests to the favorites endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favorites_service_request_duration_seconds",
			Help:    "Duration of favorites endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// ClientWithFavorites is the composed view returned by favorite mutations
type ClientWithFavorites struct {
	ID        uuid.UUID                `json:"id"`
	Name      string                   `json:"name"`
	Email     string                   `json:"email"`
	Favorites []domain.FavoriteDisplay `json:"favorites"`
}

// FavoritesHandler handles HTTP requests for favorites and the catalog listing
type FavoritesHandler struct {
	addHandler    *command.AddFavoriteHandler
	removeHandler *command.RemoveFavoriteHandler
	listHandler   *query.ListFavoritesHandler
	clients       clientdomain.ClientRepository
	resolver      catalogdomain.Resolver
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(
	clients clientdomain.ClientRepository,
	favorites domain.FavoriteRepository,
	resolver catalogdomain.Resolver,
	events command.EventPublisher,
) *FavoritesHandler {
	return &FavoritesHandler{
		addHandler:    command.NewAddFavoriteHandler(clients, favorites, resolver, events),
		removeHandler: command.NewRemoveFavoriteHandler(clients, favorites, events),
		listHandler:   query.NewListFavoritesHandler(clients, favorites, resolver),
		clients:       clients,
		resolver:      resolver,
	}
}

// RegisterRoutes wires the favorites routes into the router
func (h *FavoritesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/clients/{id}/favorites/{productID}",
		h.metricsMiddleware("/clients/{id}/favorites/{productID}", clienthttp.AdminMiddleware(h.AddFavorite))).Methods("POST")
	router.HandleFunc("/clients/{id}/favorites/{productID}",
		h.metricsMiddleware("/clients/{id}/favorites/{productID}", clienthttp.AdminMiddleware(h.RemoveFavorite))).Methods("DELETE")
	router.HandleFunc("/clients/{id}/favorites",
		h.metricsMiddleware("/clients/{id}/favorites", clienthttp.AdminMiddleware(h.ListFavorites))).Methods("GET")
	router.HandleFunc("/products",
		h.metricsMiddleware("/products", clienthttp.AdminMiddleware(h.ListProducts))).Methods("GET")
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *FavoritesHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// AddFavorite handles POST /clients/{id}/favorites/{productID}
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := parsePathIDs(w, r)
	if !ok {
		return
	}

	err := h.addHandler.Handle(r.Context(), command.AddFavoriteCommand{
		ClientID:  clientID,
		ProductID: productID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.respondComposedView(w, r, clientID, http.StatusCreated)
}

// RemoveFavorite handles DELETE /clients/{id}/favorites/{productID}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	clientID, productID, ok := parsePathIDs(w, r)
	if !ok {
		return
	}

	err := h.removeHandler.Handle(r.Context(), command.RemoveFavoriteCommand{
		ClientID:  clientID,
		ProductID: productID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.respondComposedView(w, r, clientID, http.StatusOK)
}

// ListFavorites handles GET /clients/{id}/favorites
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client id")
		return
	}

	displays, err := h.listHandler.Handle(r.Context(), query.ListFavoritesQuery{ClientID: clientID})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, displays)
}

// ListProducts handles GET /products, serving the cached catalog listing
func (h *FavoritesHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.resolver.ResolveAll(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

func (h *FavoritesHandler) respondComposedView(w http.ResponseWriter, r *http.Request, clientID uuid.UUID, status int) {
	client, err := h.clients.FindByID(r.Context(), clientID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	displays, err := h.listHandler.Handle(r.Context(), query.ListFavoritesQuery{ClientID: clientID})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, status, ClientWithFavorites{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Favorites: displays,
	})
}

func parsePathIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, bool) {
	vars := mux.Vars(r)

	clientID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client id")
		return uuid.Nil, 0, false
	}

	productID, err := strconv.ParseInt(vars["productID"], 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return uuid.Nil, 0, false
	}

	return clientID, productID, true
}

func respondDomainError(w http.ResponseWriter, err error) {
	var upstreamErr *catalogdomain.UpstreamError

	switch {
	case errors.Is(err, clientdomain.ErrClientNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, domain.ErrNotFavorited):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyFavorited):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalogdomain.ErrUpstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, catalogdomain.ErrUpstreamProtocol):
		respondError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &upstreamErr):
		// propagate the upstream status to the caller
		respondError(w, upstreamErr.Status, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
