package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shhac/interfere/internal/domain"
)

// ErrNotFound is returned when a looked-up row does not exist
var ErrNotFound = errors.New("not found")

// Repository defines persistence operations for Interfere
type Repository interface {
	// Endpoint operations
	CreateEndpoint(ctx context.Context, url string, method domain.Method) (int64, error)
	CreateEndpointFull(ctx context.Context, endpoint domain.Endpoint) (int64, error)
	UpdateEndpointURL(ctx context.Context, id int64, url string) error
	UpdateEndpointMethod(ctx context.Context, id int64, method domain.Method) error
	DeleteEndpoint(ctx context.Context, id int64) error
	FindEndpoint(ctx context.Context, url string, method domain.Method) (*domain.Endpoint, error)

	// Response operations
	CreateResponse(ctx context.Context, endpointID int64, response domain.Response) (int64, error)
	UpdateResponse(ctx context.Context, id int64, text string, code int, receivedAt time.Time) error
	DeleteResponse(ctx context.Context, id int64) error
	ResponseCount(ctx context.Context, endpointID int64) (int, error)

	// Query parameter and header operations
	CreatePair(ctx context.Context, kind domain.PairKind, responseID int64, pair domain.KeyValue) (int64, error)
	UpdatePair(ctx context.Context, kind domain.PairKind, id int64, key, value string, on bool) error
	DeletePair(ctx context.Context, kind domain.PairKind, id int64) error

	// LoadEndpoints returns every endpoint with nested responses and pairs,
	// optionally filtered by a case-insensitive substring of the URL.
	LoadEndpoints(ctx context.Context, search string) ([]domain.Endpoint, error)

	Close() error
}
