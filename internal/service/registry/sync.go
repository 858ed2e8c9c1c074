package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
	"github.com/oshokin/lambda-deploy/internal/logger"
)

// Synchronizer reconciles one deployment target's desired state with the
// remote registry. Presence of a remote resource with the target's name
// decides update; absence decides create. The decision is recomputed on
// every invocation.
type Synchronizer struct {
	// registry is the remote registry the target is reconciled against.
	registry Registry
}

// NewSynchronizer creates a synchronizer backed by the provided registry.
func NewSynchronizer(registry Registry) *Synchronizer {
	return &Synchronizer{registry: registry}
}

// Sync validates the desired configuration, looks up the remote resource by
// name, and issues a create or an update carrying the artifact bytes plus
// the full desired configuration. Validation runs before any network call so
// a payload is never uploaded just to be rejected.
func (s *Synchronizer) Sync(
	ctx context.Context,
	target *function.Target,
	artifact []byte,
) (*function.Descriptor, function.Decision, error) {
	if err := target.Validate(); err != nil {
		return nil, "", err
	}

	_, err := s.registry.Get(ctx, target.Name)

	switch {
	case errors.Is(err, ErrNotFound):
		logger.InfoKV(ctx, "Function not found in registry, creating", "name", target.Name)

		descriptor, createErr := s.registry.Create(ctx, target, artifact)
		if createErr != nil {
			return nil, "", fmt.Errorf("create function %s: %w", target.Name, createErr)
		}

		return descriptor, function.DecisionCreate, nil

	case err != nil:
		return nil, "", fmt.Errorf("look up function %s: %w", target.Name, err)

	default:
		logger.InfoKV(ctx, "Function found in registry, updating", "name", target.Name)

		descriptor, updateErr := s.registry.Update(ctx, target, artifact)
		if updateErr != nil {
			return nil, "", fmt.Errorf("update function %s: %w", target.Name, updateErr)
		}

		return descriptor, function.DecisionUpdate, nil
	}
}
