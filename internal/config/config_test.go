package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lambda-deploy/internal/domain/function"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	require.Equal(t, ".", cfg.Directory)
	require.Equal(t, DefaultHandler, cfg.Handler)
	require.Equal(t, DefaultRuntime, cfg.Runtime)
	require.Equal(t, DefaultTimeoutSeconds, cfg.Timeout)
	require.Equal(t, DefaultMemorySizeMB, cfg.MemorySize)
	require.Equal(t, ".env", cfg.EnvFile)
	require.Empty(t, cfg.Role)
}

func TestResolveSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := `
name: reporting
runtime: python3.11
timeout: 60
memory_size: 512
role: arn:aws:iam::123456789012:role/lambda
env_vars:
  - API_KEY
  - STAGE
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Resolve(path, nil)
	require.NoError(t, err)

	require.Equal(t, "reporting", cfg.Name)
	require.Equal(t, "python3.11", cfg.Runtime)
	require.Equal(t, int32(60), cfg.Timeout)
	require.Equal(t, int32(512), cfg.MemorySize)
	require.Equal(t, []string{"API_KEY", "STAGE"}, cfg.EnvVars)
	// Fields the file does not mention keep their defaults.
	require.Equal(t, DefaultHandler, cfg.Handler)
}

func TestResolveMalformedSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not yaml"), 0o600))

	_, err := Resolve(path, nil)
	require.Error(t, err)
}

func TestResolvePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := `
name: from-file
timeout: 10
memory_size: 256
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	t.Setenv(EnvName, "from-env")
	t.Setenv(EnvTimeout, "20")

	flagName := "from-flag"
	cfg, err := Resolve(path, &Overrides{Name: &flagName})
	require.NoError(t, err)

	// Flags beat the environment, the environment beats the file,
	// the file beats the defaults.
	require.Equal(t, "from-flag", cfg.Name)
	require.Equal(t, int32(20), cfg.Timeout)
	require.Equal(t, int32(256), cfg.MemorySize)
}

func TestResolveEnvironmentLayer(t *testing.T) {
	t.Setenv(EnvRole, "arn:aws:iam::123456789012:role/lambda")
	t.Setenv(EnvEnvVars, "API_KEY, STAGE ,,")
	t.Setenv(EnvS3Bucket, "artifact-bucket")

	cfg, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	require.Equal(t, "arn:aws:iam::123456789012:role/lambda", cfg.Role)
	require.Equal(t, []string{"API_KEY", "STAGE"}, cfg.EnvVars)
	require.Equal(t, "artifact-bucket", cfg.S3Bucket)
}

func TestResolveNonNumericEnvironment(t *testing.T) {
	t.Setenv(EnvMemorySize, "lots")

	_, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.ErrorIs(t, err, function.ErrInvalidConfiguration)
}

func TestTargetDefaultsNameAndDescription(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := defaults()
	cfg.Directory = filepath.Join(dir, "usage-report")
	cfg.Role = "arn:aws:iam::123456789012:role/lambda"

	target, err := cfg.Target()
	require.NoError(t, err)

	require.Equal(t, "usage-report", target.Name)
	require.Equal(t, "Lambda code for usage-report", target.Description)
	require.True(t, filepath.IsAbs(target.Root))
}

func TestTargetInvalidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := defaults()
	cfg.Name = "broken"
	cfg.Role = "arn:aws:iam::123456789012:role/lambda"
	cfg.MemorySize = 100

	_, err := cfg.Target()
	require.ErrorIs(t, err, function.ErrInvalidConfiguration)
}

func TestTargetMissingRole(t *testing.T) {
	t.Parallel()

	cfg := defaults()
	cfg.Name = "broken"

	_, err := cfg.Target()
	require.ErrorIs(t, err, function.ErrInvalidConfiguration)
}

func TestLoadAbsent(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSplitEnvVarList(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"A", "B"}, SplitEnvVarList("A,B"))
	require.Equal(t, []string{"A", "B"}, SplitEnvVarList(" A , B "))
	require.Empty(t, SplitEnvVarList(""))
	require.Empty(t, SplitEnvVarList(" , ,"))
}
