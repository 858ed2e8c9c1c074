package bundler

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/oshokin/lambda-deploy/internal/logger"
)

// pipExecutable is the command used to install Python packages.
const pipExecutable = "pip"

// PipInstaller installs Python packages with pip into a target directory.
// Compiled extension modules are installed as-is: binary compatibility with
// the remote runtime is a known, unchecked limitation.
type PipInstaller struct{}

// Install runs `pip install -r <manifest> --target <dest>` for Python
// runtimes. Other runtimes have no installer in this strategy.
func (p *PipInstaller) Install(ctx context.Context, manifestPath, runtime, destDir string) error {
	if !strings.HasPrefix(runtime, "python") {
		return fmt.Errorf("no installer for runtime %q", runtime)
	}

	cmd := exec.CommandContext(ctx, pipExecutable,
		"install",
		"--requirement", manifestPath,
		"--target", destDir,
		"--no-compile",
		"--disable-pip-version-check",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", pipExecutable, err, strings.TrimSpace(string(output)))
	}

	logger.Debugf(ctx, "pip output:\n%s", string(output))

	return nil
}
