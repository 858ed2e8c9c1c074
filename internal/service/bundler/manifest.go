package bundler

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFilename is the dependency manifest consumed at the target root.
// The manifest is consumed by the bundler and never shipped in the artifact.
const ManifestFilename = "requirements.txt"

// ErrManifest indicates that a manifest is present but unreadable.
var ErrManifest = errors.New("unreadable dependency manifest")

// Requirement is one (package, version-constraint) pair from the manifest.
type Requirement struct {
	// Name is the package name.
	Name string
	// Constraint is the pinned version, empty when the line carries none.
	Constraint string
}

// Manifest is the ordered dependency list read from the target root.
type Manifest struct {
	// Path is the location the manifest was read from.
	Path string
	// Requirements preserves the file order of the listed packages.
	Requirements []Requirement
}

// LoadManifest reads the dependency manifest at the target root.
// Absence of the manifest is not an error: a nil manifest means the
// bundling step is skipped entirely.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifest, path, err)
	}

	manifest := &Manifest{Path: path}

	scanner := bufio.NewScanner(strings.NewReader(string(contents)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, constraint, _ := strings.Cut(line, "==")
		manifest.Requirements = append(manifest.Requirements, Requirement{
			Name:       strings.TrimSpace(name),
			Constraint: strings.TrimSpace(constraint),
		})
	}

	return manifest, nil
}
