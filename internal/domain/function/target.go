package function

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

const (
	// MinTimeoutSeconds is the smallest execution timeout the registry accepts.
	MinTimeoutSeconds = 1
	// MaxTimeoutSeconds is the largest execution timeout the registry accepts.
	MaxTimeoutSeconds = 300

	// MinMemorySizeMB is the smallest memory allocation the registry accepts.
	MinMemorySizeMB = 128
	// MaxMemorySizeMB is the largest memory allocation the registry accepts.
	MaxMemorySizeMB = 10240
	// MemorySizeStepMB is the increment the registry requires for memory allocations.
	MemorySizeStepMB = 64
)

// ErrInvalidConfiguration indicates that the desired function configuration
// violates the registry's constraints. It is raised before any packaging or
// network activity so a doomed payload is never built, let alone uploaded.
var ErrInvalidConfiguration = errors.New("invalid function configuration")

// nameRegexp matches the registry's function naming constraints.
var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Target describes one local directory treated as a single deployable function.
// It is constructed once per invocation from resolved configuration and is
// immutable thereafter.
type Target struct {
	// Root is the absolute path of the directory to package.
	Root string
	// Name is the logical function name used for create-vs-update reconciliation.
	Name string
	// Handler is the entry point invoked by the runtime, e.g. "lambda_function.lambda_handler".
	Handler string
	// Runtime is the registry runtime identifier, e.g. "python3.12".
	Runtime string
	// Description is a human-readable summary stored on the remote resource.
	Description string
	// Timeout is the execution timeout in seconds.
	Timeout int32
	// MemorySize is the memory allocation in megabytes.
	MemorySize int32
	// Role is the execution role identifier the function assumes.
	Role string
}

// ResolveName derives the logical function name: an explicit override wins,
// otherwise the base name of the target root is used.
func ResolveName(root, override string) string {
	if override != "" {
		return override
	}

	return filepath.Base(filepath.Clean(root))
}

// Validate checks the target against the registry's configuration constraints.
// All violations are reported as ErrInvalidConfiguration.
func (t *Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: function name must not be empty", ErrInvalidConfiguration)
	}

	if !nameRegexp.MatchString(t.Name) {
		return fmt.Errorf("%w: function name %q must contain only alphanumerics, '-' or '_'",
			ErrInvalidConfiguration, t.Name)
	}

	if t.Role == "" {
		return fmt.Errorf("%w: execution role must be provided", ErrInvalidConfiguration)
	}

	if t.Timeout < MinTimeoutSeconds || t.Timeout > MaxTimeoutSeconds {
		return fmt.Errorf("%w: timeout %d is outside [%d, %d] seconds",
			ErrInvalidConfiguration, t.Timeout, MinTimeoutSeconds, MaxTimeoutSeconds)
	}

	if t.MemorySize < MinMemorySizeMB || t.MemorySize > MaxMemorySizeMB {
		return fmt.Errorf("%w: memory size %d MB is outside [%d, %d]",
			ErrInvalidConfiguration, t.MemorySize, MinMemorySizeMB, MaxMemorySizeMB)
	}

	if t.MemorySize%MemorySizeStepMB != 0 {
		return fmt.Errorf("%w: memory size %d MB is not a multiple of %d",
			ErrInvalidConfiguration, t.MemorySize, MemorySizeStepMB)
	}

	return nil
}
