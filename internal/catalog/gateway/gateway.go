package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/client-favorites/internal/catalog/domain"
)

const defaultTimeout = 10 * time.Second

// HTTPGateway fetches products from the external catalog service over HTTP
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway against the given catalog base URL
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// FetchProduct fetches a single product by ID.
// A 404 from the catalog maps to domain.ErrProductNotFound.
func (g *HTTPGateway) FetchProduct(ctx context.Context, id int64) (*domain.Snapshot, error) {
	url := fmt.Sprintf("%s/products/%d", g.baseURL, id)

	body, err := g.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}
	return &snapshot, nil
}

// FetchAllProducts fetches the full catalog listing
func (g *HTTPGateway) FetchAllProducts(ctx context.Context) ([]domain.Snapshot, error) {
	body, err := g.get(ctx, g.baseURL+"/products")
	if err != nil {
		return nil, err
	}

	var snapshots []domain.Snapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}
	return snapshots, nil
}

func (g *HTTPGateway) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
