package domain

import (
	"context"
	"errors"
	"fmt"
)

// Rating holds the review aggregate reported by the external catalog
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Snapshot is a point-in-time product representation fetched from the
// external catalog. It is never persisted locally.
type Snapshot struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Image       string  `json:"image,omitempty"`
	Rating      *Rating `json:"rating,omitempty"`
}

var (
	// ErrProductNotFound means the catalog does not know the identifier.
	// An expected outcome, not a fault.
	ErrProductNotFound = errors.New("product not found in external catalog")

	// ErrUpstreamUnavailable means the catalog could not be reached
	ErrUpstreamUnavailable = errors.New("external catalog is unavailable")

	// ErrUpstreamProtocol means the catalog returned a body we cannot parse
	ErrUpstreamProtocol = errors.New("malformed response from external catalog")
)

// UpstreamError carries a non-404 error status returned by the catalog
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("external catalog returned status %d: %s", e.Status, e.Body)
}

// Gateway defines the contract for fetching product data from the
// external catalog. One outbound request per call, no retries.
type Gateway interface {
	FetchProduct(ctx context.Context, id int64) (*Snapshot, error)
	FetchAllProducts(ctx context.Context) ([]Snapshot, error)
}

// Resolver resolves product snapshots through a caching layer
type Resolver interface {
	Resolve(ctx context.Context, id int64) (*Snapshot, error)
	ResolveAll(ctx context.Context) ([]Snapshot, error)
}
