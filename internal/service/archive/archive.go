package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/bundler"
	"github.com/oshokin/lambda-deploy/internal/service/envfile"
)

// ErrPackaging indicates that the artifact could not be assembled.
var ErrPackaging = errors.New("packaging failed")

// vcsDirNames are version-control metadata directories never shipped.
//
//nolint:gochecknoglobals // Fixed exclusion set shared by every packaging run.
var vcsDirNames = map[string]struct{}{
	".git": {},
	".svn": {},
	".hg":  {},
}

// shippedFileMode is the mode recorded for every archive entry. A fixed
// mode keeps archives byte-identical across checkouts.
const shippedFileMode os.FileMode = 0o644

// Input describes everything that goes into one deployable archive.
type Input struct {
	// SourceRoot is the target directory whose files land at the archive root.
	SourceRoot string
	// DependencyTree is the installed-package tree merged at the archive
	// root so imports resolve without path manipulation. Optional.
	DependencyTree string
	// ComposedEnvPath is the composed environment file shipped at the
	// archive root under the registry-conventional name. Optional.
	ComposedEnvPath string
	// ExcludeEnvName is the configured base environment filename. Files
	// with this name inside the source tree are never shipped verbatim.
	ExcludeEnvName string
}

// Result is the finished archive.
type Result struct {
	// Path is the location of the archive inside the staging area.
	Path string
	// Size is the archive size in bytes. The registry may reject oversized
	// payloads; that rejection surfaces from the synchronizer, not here.
	Size int64
}

// Build assembles one deployable archive: target source files at the root
// (environment files, version-control metadata, the dependency manifest and
// bytecode caches excluded), the dependency tree merged at the root, and the
// composed environment file at the root.
//
// Identical inputs produce byte-identical archives: entries are collected
// into a map, sorted by path, and written with zeroed timestamps and a fixed
// file mode. The archive is assembled under a partial name and renamed into
// its final location only when complete.
func Build(ctx context.Context, staging *Staging, name string, in Input) (*Result, error) {
	entries, err := collectEntries(ctx, in)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	finalPath := filepath.Join(staging.Dir, name+".zip")
	partialPath := finalPath + ".partial"

	if err := writeArchive(partialPath, paths, entries); err != nil {
		// Never leave a partial archive behind.
		_ = os.Remove(partialPath)
		return nil, err
	}

	if err := os.Rename(partialPath, finalPath); err != nil {
		return nil, fmt.Errorf("%w: finalize archive: %v", ErrPackaging, err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat archive: %v", ErrPackaging, err)
	}

	logger.InfoKV(ctx, "Packaged artifact",
		"path", finalPath,
		"size_bytes", info.Size(),
		"entries", len(paths))

	return &Result{Path: finalPath, Size: info.Size()}, nil
}

// collectEntries gathers archive entries keyed by their path inside the
// archive. Dependency entries are merged after source entries, so on a name
// collision the dependency tree wins (last writer).
func collectEntries(ctx context.Context, in Input) (map[string]string, error) {
	entries := make(map[string]string)

	if err := collectTree(ctx, entries, in.SourceRoot, in.ExcludeEnvName, true); err != nil {
		return nil, err
	}

	if in.DependencyTree != "" {
		if err := collectTree(ctx, entries, in.DependencyTree, "", false); err != nil {
			return nil, err
		}
	}

	if in.ComposedEnvPath != "" {
		entries[envfile.DefaultFilename] = in.ComposedEnvPath
	}

	return entries, nil
}

// collectTree walks one directory tree and records shippable files under
// their archive-relative paths.
func collectTree(ctx context.Context, entries map[string]string, root, excludeEnvName string, isSource bool) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		base := d.Name()

		if d.IsDir() {
			if _, vcs := vcsDirNames[base]; vcs || base == "__pycache__" {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(base, ".pyc") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if isSource {
			// A developer's local environment file is never copied into
			// the bundle; only the freshly composed one ships.
			if base == excludeEnvName || base == envfile.DefaultFilename {
				logger.WarnKV(ctx, "Skipping environment file inside target root, "+
					"use the environment whitelist instead", "path", path)
				return nil
			}

			// The manifest is consumed by the bundler, not shipped.
			if rel == bundler.ManifestFilename {
				return nil
			}
		}

		entries[filepath.ToSlash(rel)] = path

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPackaging, root, err)
	}

	return nil
}

// writeArchive writes the sorted entries into a zip file with deterministic
// metadata.
func writeArchive(path string, sorted []string, entries map[string]string) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: create archive: %v", ErrPackaging, err)
	}

	writer := zip.NewWriter(out)

	for _, entryPath := range sorted {
		if err := writeEntry(writer, entryPath, entries[entryPath]); err != nil {
			_ = writer.Close()
			_ = out.Close()

			return err
		}
	}

	if err := writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: close archive: %v", ErrPackaging, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close archive: %v", ErrPackaging, err)
	}

	return nil
}

// writeEntry copies one file into the archive with normalized metadata:
// no modification time, fixed mode, deflate compression.
func writeEntry(writer *zip.Writer, entryPath, srcPath string) error {
	header := &zip.FileHeader{
		Name:   entryPath,
		Method: zip.Deflate,
	}
	header.SetMode(shippedFileMode)

	dst, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: add %s: %v", ErrPackaging, entryPath, err)
	}

	src, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrPackaging, srcPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = src.Close()
		return fmt.Errorf("%w: copy %s: %v", ErrPackaging, srcPath, err)
	}

	if err := src.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrPackaging, srcPath, err)
	}

	return nil
}
