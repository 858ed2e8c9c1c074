package archive

import (
	"context"
	"fmt"
	"os"

	"github.com/oshokin/lambda-deploy/internal/logger"
)

// Staging is the filesystem-backed working area exclusively owned by one
// invocation's packaging run. It holds the installed dependency tree, the
// composed environment file and the finished archive, and is never shared
// across invocations.
type Staging struct {
	// Dir is the scratch directory root.
	Dir string
	// keep leaves the directory on disk for inspection instead of removing it.
	keep bool
}

// NewStaging creates a fresh scratch directory for one packaging run.
func NewStaging(keep bool) (*Staging, error) {
	dir, err := os.MkdirTemp("", "lambda-deploy-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	return &Staging{Dir: dir, keep: keep}, nil
}

// Close destroys the staging area, or leaves it in place when inspection
// was requested.
func (s *Staging) Close(ctx context.Context) error {
	if s.keep {
		logger.InfoKV(ctx, "Keeping staging directory for inspection", "path", s.Dir)
		return nil
	}

	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}

	return nil
}
