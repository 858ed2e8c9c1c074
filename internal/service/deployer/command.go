package deployer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/domain/function"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/archive"
	"github.com/oshokin/lambda-deploy/internal/service/bundler"
	"github.com/oshokin/lambda-deploy/internal/service/envfile"
	"github.com/oshokin/lambda-deploy/internal/service/registry"
)

// Options contains inputs for the deploy entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Overrides carries explicitly provided flag values.
	Overrides *config.Overrides
}

// Run executes one full deploy: resolve configuration, package the target
// directory, and reconcile it with the remote registry.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lambda-deploy")

	cfg, err := config.Resolve(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	reg, err := registry.Connect(ctx, cfg.S3Bucket, cfg.S3KeyPrefix)
	if err != nil {
		return fmt.Errorf("connect to registry: %w", err)
	}

	descriptor, decision, err := Deploy(ctx, cfg, reg, os.LookupEnv, nil)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Deployed successfully",
		"name", descriptor.Name,
		"decision", string(decision),
		"version", descriptor.Version,
		"arn", descriptor.ARN,
		"code_sha256", descriptor.CodeSHA256)

	return nil
}

// Deploy packages one target and synchronizes it with the provided
// registry. A nil installer selects the pip-backed one. Configuration
// validity is checked before any bundling, packaging or network activity;
// all packaging-stage failures abort before the first registry call.
//
// The bundler and the composer have no data dependency on each other, but
// one invocation is deliberately sequential: the staged bundle is
// exclusively owned and the install step dominates the wall clock anyway.
func Deploy(
	ctx context.Context,
	cfg *config.Config,
	reg registry.Registry,
	lookup func(string) (string, bool),
	installer bundler.Installer,
) (*function.Descriptor, function.Decision, error) {
	target, err := cfg.Target()
	if err != nil {
		return nil, "", err
	}

	logger.InfoKV(ctx, "Packaging function", "name", target.Name, "root", target.Root)

	staging, err := archive.NewStaging(cfg.KeepStaging)
	if err != nil {
		return nil, "", err
	}

	defer func() {
		if closeErr := staging.Close(ctx); closeErr != nil {
			logger.WarnKV(ctx, "Failed to clean up staging directory", "error", closeErr)
		}
	}()

	manifest, err := bundler.LoadManifest(target.Root)
	if err != nil {
		return nil, "", err
	}

	dependencyTree, err := bundler.NewBundler(installer).Bundle(ctx, manifest, target.Runtime, staging.Dir)
	if err != nil {
		return nil, "", err
	}

	pairs, err := envfile.Compose(cfg.EnvFile, cfg.EnvVars, lookup)
	if err != nil {
		return nil, "", err
	}

	composedPath, err := envfile.WriteFile(staging.Dir, pairs)
	if err != nil {
		return nil, "", err
	}

	result, err := archive.Build(ctx, staging, target.Name, archive.Input{
		SourceRoot:      target.Root,
		DependencyTree:  dependencyTree,
		ComposedEnvPath: composedPath,
		ExcludeEnvName:  baseName(cfg.EnvFile),
	})
	if err != nil {
		return nil, "", err
	}

	artifact, err := os.ReadFile(result.Path)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}

	return registry.NewSynchronizer(reg).Sync(ctx, target, artifact)
}

// baseName extracts the filename used to strip local environment files from
// the source tree.
func baseName(path string) string {
	if path == "" {
		return envfile.DefaultFilename
	}

	return filepath.Base(path)
}
