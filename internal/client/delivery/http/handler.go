package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tair/client-favorites/internal/client/domain"
	"github.com/tair/client-favorites/internal/client/usecase/command"
	"github.com/tair/client-favorites/internal/client/usecase/query"
	"github.com/tair/client-favorites/pkg/auth"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_service_requests_total",
			Help: "Total number of requests to the client endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_service_request_duration_seconds",
			Help:    "Duration of client endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// ClientHandler handles HTTP requests for clients and admin auth
type ClientHandler struct {
	createHandler *command.CreateClientHandler
	updateHandler *command.UpdateClientHandler
	deleteHandler *command.DeleteClientHandler
	getHandler    *query.GetClientHandler
	listHandler   *query.ListClientsHandler
}

// NewClientHandler creates a new client handler
func NewClientHandler(repo domain.ClientRepository, events command.EventPublisher) *ClientHandler {
	return &ClientHandler{
		createHandler: command.NewCreateClientHandler(repo, events),
		updateHandler: command.NewUpdateClientHandler(repo),
		deleteHandler: command.NewDeleteClientHandler(repo, events),
		getHandler:    query.NewGetClientHandler(repo),
		listHandler:   query.NewListClientsHandler(repo),
	}
}

// NewClientHandlerWithDI creates a handler from prebuilt usecase handlers
func NewClientHandlerWithDI(
	createHandler *command.CreateClientHandler,
	updateHandler *command.UpdateClientHandler,
	deleteHandler *command.DeleteClientHandler,
	getHandler *query.GetClientHandler,
	listHandler *query.ListClientsHandler,
) *ClientHandler {
	return &ClientHandler{
		createHandler: createHandler,
		updateHandler: updateHandler,
		deleteHandler: deleteHandler,
		getHandler:    getHandler,
		listHandler:   listHandler,
	}
}

// RegisterRoutes wires the client routes into the router
func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/master-token", h.metricsMiddleware("/auth/master-token", h.MasterLogin)).Methods("POST")

	router.HandleFunc("/clients", h.metricsMiddleware("/clients", AdminMiddleware(h.CreateClient))).Methods("POST")
	router.HandleFunc("/clients", h.metricsMiddleware("/clients", AdminMiddleware(h.ListClients))).Methods("GET")
	router.HandleFunc("/clients/{id}", h.metricsMiddleware("/clients/{id}", AdminMiddleware(h.GetClient))).Methods("GET")
	router.HandleFunc("/clients/{id}", h.metricsMiddleware("/clients/{id}", AdminMiddleware(h.UpdateClient))).Methods("PUT")
	router.HandleFunc("/clients/{id}", h.metricsMiddleware("/clients/{id}", AdminMiddleware(h.DeleteClient))).Methods("DELETE")
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *ClientHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// MasterLogin handles POST /auth/master-token
func (h *ClientHandler) MasterLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	masterUsername := os.Getenv("MASTER_USERNAME")
	masterPasswordHash := os.Getenv("MASTER_PASSWORD_HASH")
	if req.Username != masterUsername || !auth.CheckPassword(masterPasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Incorrect admin username or password")
		return
	}

	token, err := auth.GenerateToken(req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	client, err := h.createHandler.Handle(r.Context(), command.CreateClientCommand{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, client)
}

// ListClients handles GET /clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	clients, err := h.listHandler.Handle(r.Context(), query.ListClientsQuery{Limit: limit, Offset: offset})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// GetClient handles GET /clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClientID(w, r)
	if !ok {
		return
	}

	client, err := h.getHandler.Handle(r.Context(), query.GetClientQuery{ID: id})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// UpdateClient handles PUT /clients/{id}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClientID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	client, err := h.updateHandler.Handle(r.Context(), command.UpdateClientCommand{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/{id}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := parseClientID(w, r)
	if !ok {
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteClientCommand{ID: id}); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseClientID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client id")
		return uuid.Nil, false
	}
	return id, true
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
