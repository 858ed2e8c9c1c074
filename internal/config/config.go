package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
	"github.com/oshokin/lambda-deploy/internal/service/envfile"
)

const (
	// DefaultConfigFilename is the default filename for deployment settings.
	DefaultConfigFilename = "lambda-deploy-settings.yaml"

	// DefaultRuntime is the registry runtime identifier used when none is configured.
	DefaultRuntime = "python3.12"

	// DefaultHandler is the entry point used when none is configured.
	DefaultHandler = "lambda_function.lambda_handler"

	// DefaultTimeoutSeconds is the execution timeout used when none is configured.
	DefaultTimeoutSeconds int32 = 3

	// DefaultMemorySizeMB is the memory allocation used when none is configured.
	DefaultMemorySizeMB int32 = 128
)

// Environment variables consulted by the resolver. Every option can be
// supplied through the process environment; explicit flags take precedence.
const (
	EnvDirectory    = "LAMBDA_DIRECTORY"
	EnvName         = "LAMBDA_NAME"
	EnvEnvFile      = "LAMBDA_ENV_FILE"
	EnvEnvVars      = "LAMBDA_ENV_VARS"
	EnvRole         = "LAMBDA_ROLE"
	EnvRuntime      = "LAMBDA_RUNTIME"
	EnvHandler      = "LAMBDA_HANDLER"
	EnvDescription  = "LAMBDA_DESCRIPTION"
	EnvTimeout      = "LAMBDA_TIMEOUT"
	EnvMemorySize   = "LAMBDA_MEMORY_SIZE"
	EnvS3Bucket     = "LAMBDA_S3_BUCKET"
	EnvS3KeyPrefix  = "LAMBDA_S3_KEY_PREFIX"
	EnvLoggingLevel = "LAMBDA_LOGGING_LEVEL"
)

// Config is the resolved, immutable configuration consumed by the deploy
// pipeline. It is produced once by Resolve before any core component runs;
// the core never reads ambient state directly.
type Config struct {
	// Directory is the target root to package, defaulting to the working directory.
	Directory string `yaml:"directory"`
	// Name overrides the logical function name derived from the directory.
	Name string `yaml:"name"`
	// Handler is the entry point invoked by the runtime.
	Handler string `yaml:"handler"`
	// Runtime is the registry runtime identifier.
	Runtime string `yaml:"runtime"`
	// Description is stored on the remote resource; defaults to "Lambda code for <name>".
	Description string `yaml:"description"`
	// Timeout is the execution timeout in seconds.
	Timeout int32 `yaml:"timeout"`
	// MemorySize is the memory allocation in megabytes.
	MemorySize int32 `yaml:"memory_size"`
	// Role is the execution role the deployed function assumes.
	Role string `yaml:"role"`
	// EnvFile is the base environment file merged into the shipped environment.
	// It is resolved relative to the working directory, not the target root.
	EnvFile string `yaml:"env_file"`
	// EnvVars is the whitelist of process environment variables injected
	// into the shipped environment file.
	EnvVars []string `yaml:"env_vars"`
	// S3Bucket, when set, routes artifact bytes through an S3 object instead
	// of an inline payload.
	S3Bucket string `yaml:"s3_bucket"`
	// S3KeyPrefix prefixes the artifact object key when S3Bucket is set.
	S3KeyPrefix string `yaml:"s3_key_prefix"`
	// KeepStaging leaves the staged bundle on disk for inspection.
	KeepStaging bool `yaml:"-"`
}

// Overrides carries explicitly provided flag values. Nil fields fall through
// to the environment, the settings file and finally the built-in defaults.
type Overrides struct {
	Directory   *string
	Name        *string
	Handler     *string
	Runtime     *string
	Description *string
	Role        *string
	EnvFile     *string
	EnvVars     []string
	Timeout     *int32
	MemorySize  *int32
	S3Bucket    *string
	S3KeyPrefix *string
	KeepStaging bool
}

// Load reads a settings file and unmarshals it. Absence of the file is
// reported via os.ErrNotExist so callers can treat the file as optional.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Resolve layers configuration sources into one immutable Config.
// Precedence, highest first: explicit flags, process environment,
// settings file, built-in defaults.
func Resolve(path string, ov *Overrides) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = DefaultConfigFilename
	}

	fileCfg, err := Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// The settings file is optional.
	case err != nil:
		return nil, err
	default:
		cfg.overlay(fileCfg)
	}

	if err := cfg.overlayEnvironment(); err != nil {
		return nil, err
	}

	if ov != nil {
		ov.apply(cfg)
	}

	return cfg, nil
}

// Target builds the immutable deployment target from the resolved
// configuration and validates it against the registry's constraints.
func (c *Config) Target() (*function.Target, error) {
	root, err := filepath.Abs(c.Directory)
	if err != nil {
		return nil, fmt.Errorf("resolve target root: %w", err)
	}

	name := function.ResolveName(root, c.Name)

	description := c.Description
	if description == "" {
		description = fmt.Sprintf("Lambda code for %s", name)
	}

	target := &function.Target{
		Root:        root,
		Name:        name,
		Handler:     c.Handler,
		Runtime:     c.Runtime,
		Description: description,
		Timeout:     c.Timeout,
		MemorySize:  c.MemorySize,
		Role:        c.Role,
	}

	if err := target.Validate(); err != nil {
		return nil, err
	}

	return target, nil
}

// defaults returns the lowest configuration layer.
func defaults() *Config {
	return &Config{
		Directory:  ".",
		Handler:    DefaultHandler,
		Runtime:    DefaultRuntime,
		Timeout:    DefaultTimeoutSeconds,
		MemorySize: DefaultMemorySizeMB,
		EnvFile:    envfile.DefaultFilename,
	}
}

// overlay copies the non-zero fields of other onto the receiver.
func (c *Config) overlay(other *Config) {
	if other.Directory != "" {
		c.Directory = other.Directory
	}

	if other.Name != "" {
		c.Name = other.Name
	}

	if other.Handler != "" {
		c.Handler = other.Handler
	}

	if other.Runtime != "" {
		c.Runtime = other.Runtime
	}

	if other.Description != "" {
		c.Description = other.Description
	}

	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}

	if other.MemorySize != 0 {
		c.MemorySize = other.MemorySize
	}

	if other.Role != "" {
		c.Role = other.Role
	}

	if other.EnvFile != "" {
		c.EnvFile = other.EnvFile
	}

	if len(other.EnvVars) != 0 {
		c.EnvVars = append([]string(nil), other.EnvVars...)
	}

	if other.S3Bucket != "" {
		c.S3Bucket = other.S3Bucket
	}

	if other.S3KeyPrefix != "" {
		c.S3KeyPrefix = other.S3KeyPrefix
	}
}

// overlayEnvironment applies the LAMBDA_* process environment layer.
func (c *Config) overlayEnvironment() error {
	overlayString(&c.Directory, EnvDirectory)
	overlayString(&c.Name, EnvName)
	overlayString(&c.Handler, EnvHandler)
	overlayString(&c.Runtime, EnvRuntime)
	overlayString(&c.Description, EnvDescription)
	overlayString(&c.Role, EnvRole)
	overlayString(&c.EnvFile, EnvEnvFile)
	overlayString(&c.S3Bucket, EnvS3Bucket)
	overlayString(&c.S3KeyPrefix, EnvS3KeyPrefix)

	if value, ok := os.LookupEnv(EnvEnvVars); ok {
		c.EnvVars = SplitEnvVarList(value)
	}

	if err := overlayInt32(&c.Timeout, EnvTimeout); err != nil {
		return err
	}

	return overlayInt32(&c.MemorySize, EnvMemorySize)
}

// apply copies the explicitly provided flag values onto the configuration.
func (o *Overrides) apply(cfg *Config) {
	if o.Directory != nil {
		cfg.Directory = *o.Directory
	}

	if o.Name != nil {
		cfg.Name = *o.Name
	}

	if o.Handler != nil {
		cfg.Handler = *o.Handler
	}

	if o.Runtime != nil {
		cfg.Runtime = *o.Runtime
	}

	if o.Description != nil {
		cfg.Description = *o.Description
	}

	if o.Role != nil {
		cfg.Role = *o.Role
	}

	if o.EnvFile != nil {
		cfg.EnvFile = *o.EnvFile
	}

	if o.EnvVars != nil {
		cfg.EnvVars = append([]string(nil), o.EnvVars...)
	}

	if o.Timeout != nil {
		cfg.Timeout = *o.Timeout
	}

	if o.MemorySize != nil {
		cfg.MemorySize = *o.MemorySize
	}

	if o.S3Bucket != nil {
		cfg.S3Bucket = *o.S3Bucket
	}

	if o.S3KeyPrefix != nil {
		cfg.S3KeyPrefix = *o.S3KeyPrefix
	}

	cfg.KeepStaging = o.KeepStaging
}

// SplitEnvVarList parses a comma-delimited whitelist of variable names,
// trimming whitespace and dropping empty entries.
func SplitEnvVarList(value string) []string {
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))

	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// overlayString replaces dst with the named environment variable when set.
func overlayString(dst *string, name string) {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		*dst = value
	}
}

// overlayInt32 replaces dst with the named environment variable when set.
// A non-numeric value is an invalid configuration, not a silent fallback.
func overlayInt32(dst *int32, name string) error {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil
	}

	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q",
			function.ErrInvalidConfiguration, name, value)
	}

	*dst = int32(parsed)

	return nil
}
