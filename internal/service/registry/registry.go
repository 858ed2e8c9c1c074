package registry

import (
	"context"
	"errors"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
)

// Taxonomy of registry-stage failures. The synchronizer performs no retries:
// transient conditions are surfaced for the caller or operator to decide.
var (
	// ErrNotFound reports that no remote resource carries the requested
	// name. It is the Create branch of reconciliation, not a failure.
	ErrNotFound = errors.New("function not found in registry")

	// ErrAuth reports an authorization failure. Fatal, never retried.
	ErrAuth = errors.New("registry authorization failed")

	// ErrUnavailable reports a transient registry condition (rate limiting,
	// network). The caller may retry; this system never does.
	ErrUnavailable = errors.New("registry unavailable")

	// ErrPayloadTooLarge reports that the registry rejected the artifact
	// for its size.
	ErrPayloadTooLarge = errors.New("artifact payload too large")
)

// Registry is the remote serverless-function registry contract consumed by
// the synchronizer. Transport, auth and connection-level retries are the
// implementation's concern.
type Registry interface {
	// Get returns the descriptor for the named function, or ErrNotFound.
	Get(ctx context.Context, name string) (*function.Descriptor, error)
	// Create registers a new function carrying the full desired
	// configuration plus the packaged artifact bytes.
	Create(ctx context.Context, target *function.Target, artifact []byte) (*function.Descriptor, error)
	// Update replaces the remote code with the new artifact bytes and
	// overwrites the modeled configuration fields with the desired values.
	Update(ctx context.Context, target *function.Target, artifact []byte) (*function.Descriptor, error)
	// List enumerates every function visible to the credentials in use,
	// paginating until exhausted, in the order the registry provides.
	List(ctx context.Context) ([]function.Descriptor, error)
}
