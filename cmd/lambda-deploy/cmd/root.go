package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/deployer"
	"github.com/oshokin/lambda-deploy/internal/service/lister"
	"github.com/oshokin/lambda-deploy/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// Flag storage; only flags the user actually set become overrides.
	directory    string
	functionName string
	handler      string
	runtime      string
	description  string
	role         string
	envFile      string
	envVars      []string
	timeout      int32
	memorySize   int32
	s3Bucket     string
	s3KeyPrefix  string
	keepStaging  bool
	loggingLevel string
	verbose      bool

	// rootCmd represents the base command for packaging and deploying functions.
	rootCmd = &cobra.Command{
		Use:   "lambda-deploy",
		Short: "Package a directory into a Lambda artifact and deploy it",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging()
		},
	}

	// deployCmd packages one directory and reconciles it with the registry.
	deployCmd = &cobra.Command{
		Use:   "deploy [directory]",
		Short: "Package a directory and create or update the remote function",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			overrides := collectOverrides(cmd)
			if len(args) == 1 {
				overrides.Directory = &args[0]
			}

			options := &deployer.Options{
				ConfigPath: configPath,
				Overrides:  overrides,
			}

			return deployer.Run(ctx, options)
		},
	}

	// listCmd enumerates already deployed functions.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List already deployed functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &lister.Options{
				ConfigPath: configPath,
				Overrides:  collectOverrides(cmd),
			}

			return lister.Run(ctx, options)
		},
	}
)

// Execute runs the lambda-deploy CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&loggingLevel, "logging-level", "l", "", "logging level: debug, info, warn, error or fatal")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging (shorthand for --logging-level debug)")

	deployFlags := deployCmd.Flags()
	deployFlags.StringVarP(&directory, "directory", "d", "", "directory to package, defaults to the current one")
	deployFlags.StringVarP(&functionName, "name", "n", "", "logical function name, defaults to the directory basename")
	deployFlags.StringVar(&handler, "handler", "", "function entry point")
	deployFlags.StringVar(&runtime, "runtime", "", "registry runtime identifier")
	deployFlags.StringVar(&description, "description", "", "function description")
	deployFlags.StringVarP(&role, "role", "r", "", "execution role the function assumes (required)")
	deployFlags.StringVarP(&envFile, "env-file", "e", "", "base environment file merged into the shipped one")
	deployFlags.StringArrayVarP(&envVars, "environment-variable", "E", nil,
		"process environment variable to inject, repeatable")
	deployFlags.Int32Var(&timeout, "timeout", 0, "execution timeout in seconds")
	deployFlags.Int32Var(&memorySize, "memory-size", 0, "memory allocation in MB, multiple of 64")
	deployFlags.StringVar(&s3Bucket, "s3-bucket", "", "upload the artifact to this bucket instead of inlining it")
	deployFlags.StringVar(&s3KeyPrefix, "s3-key-prefix", "", "object key prefix for uploaded artifacts")
	deployFlags.BoolVar(&keepStaging, "keep-staging", false, "keep the staging directory for inspection")

	rootCmd.AddCommand(deployCmd, listCmd)
}

// collectOverrides turns explicitly provided flags into configuration
// overrides; untouched flags fall through to the lower layers.
func collectOverrides(cmd *cobra.Command) *config.Overrides {
	overrides := &config.Overrides{KeepStaging: keepStaging}

	setString := func(name string, value *string, dst **string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}

	setString("directory", &directory, &overrides.Directory)
	setString("name", &functionName, &overrides.Name)
	setString("handler", &handler, &overrides.Handler)
	setString("runtime", &runtime, &overrides.Runtime)
	setString("description", &description, &overrides.Description)
	setString("role", &role, &overrides.Role)
	setString("env-file", &envFile, &overrides.EnvFile)
	setString("s3-bucket", &s3Bucket, &overrides.S3Bucket)
	setString("s3-key-prefix", &s3KeyPrefix, &overrides.S3KeyPrefix)

	if cmd.Flags().Changed("environment-variable") {
		overrides.EnvVars = append([]string(nil), envVars...)
	}

	if cmd.Flags().Changed("timeout") {
		overrides.Timeout = &timeout
	}

	if cmd.Flags().Changed("memory-size") {
		overrides.MemorySize = &memorySize
	}

	return overrides
}

// configureLogging resolves the logging level: the explicit flag wins,
// then the LAMBDA_LOGGING_LEVEL environment variable, then --verbose.
func configureLogging() {
	name := loggingLevel
	if name == "" {
		name = os.Getenv(config.EnvLoggingLevel)
	}

	if name == "" && verbose {
		name = "debug"
	}

	if name == "" {
		return
	}

	if level, ok := logger.ParseLogLevel(name); ok {
		logger.SetLevel(level)
	}
}
