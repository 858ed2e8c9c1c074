package lister

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/registry"
)

// Options contains inputs for the list entry point.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Overrides carries explicitly provided flag values.
	Overrides *config.Overrides
}

// Run enumerates every function visible to the credentials in use and
// prints them in the order the registry provides.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lambda-list")

	cfg, err := config.Resolve(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	reg, err := registry.Connect(ctx, cfg.S3Bucket, cfg.S3KeyPrefix)
	if err != nil {
		return fmt.Errorf("connect to registry: %w", err)
	}

	return List(ctx, reg, os.Stdout)
}

// List writes the registry's descriptors to the provided writer as indented
// JSON, one document per function, without local re-sorting.
func List(ctx context.Context, reg registry.Registry, out io.Writer) error {
	descriptors, err := reg.List(ctx)
	if err != nil {
		return fmt.Errorf("list functions: %w", err)
	}

	logger.InfoKV(ctx, "Listed functions", "count", len(descriptors))

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "    ")

	for i := range descriptors {
		if err := encoder.Encode(&descriptors[i]); err != nil {
			return fmt.Errorf("encode descriptor: %w", err)
		}
	}

	return nil
}
