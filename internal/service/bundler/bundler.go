package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/lambda-deploy/internal/logger"
)

// packagesDirName is the subdirectory of the scratch area that receives
// the installed package trees.
const packagesDirName = "packages"

// ErrDependencyResolution indicates that a listed package failed to resolve
// or install. The whole packaging operation aborts; no partial bundle ships.
var ErrDependencyResolution = errors.New("dependency installation failed")

// Installer is the pluggable strategy that materializes the manifest's
// packages under a destination directory, installed as if for the target
// runtime's interpreter. Alternate ecosystems can plug in here without
// changing the bundler's contract.
type Installer interface {
	Install(ctx context.Context, manifestPath, runtime, destDir string) error
}

// Bundler resolves a dependency manifest into a tree of installed packages
// rooted at a scratch directory. It only ever writes under the scratch
// directory and never mutates the target's source tree.
type Bundler struct {
	// installer performs the actual package installation.
	installer Installer
}

// NewBundler creates a bundler backed by the provided installer,
// defaulting to the pip strategy.
func NewBundler(installer Installer) *Bundler {
	if installer == nil {
		installer = &PipInstaller{}
	}

	return &Bundler{installer: installer}
}

// Bundle installs the manifest's packages under scratchDir and returns the
// path to the installed tree. A nil or empty manifest yields an empty path,
// meaning there is no bundling step for this target.
func (b *Bundler) Bundle(ctx context.Context, manifest *Manifest, runtime, scratchDir string) (string, error) {
	if manifest == nil || len(manifest.Requirements) == 0 {
		logger.Debug(ctx, "No dependency manifest, skipping bundling")
		return "", nil
	}

	dest := filepath.Join(scratchDir, packagesDirName)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("%w: create package tree: %v", ErrDependencyResolution, err)
	}

	logger.InfoKV(ctx, "Installing dependencies",
		"manifest", manifest.Path,
		"packages", len(manifest.Requirements))

	if err := b.installer.Install(ctx, manifest.Path, runtime, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDependencyResolution, err)
	}

	return dest, nil
}
