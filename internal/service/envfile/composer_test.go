package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// lookupFrom builds a lookup function backed by a plain map.
func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
}

// TestComposeWhitelistWins verifies that whitelisted process values override
// base-file values while base-file order is preserved.
func TestComposeWhitelistWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(base, []byte("B=baz\n"), 0o644))

	env := map[string]string{
		"A": "foo",
		"B": "bar",
	}

	pairs, err := Compose(base, []string{"A", "B"}, lookupFrom(env))
	require.NoError(t, err)
	require.Equal(t, []Pair{{Key: "B", Value: "bar"}, {Key: "A", Value: "foo"}}, pairs)
}

// TestComposeOrder checks base-file order followed by new whitelist keys
// in the order given.
func TestComposeOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "base.env")
	require.NoError(t, os.WriteFile(base, []byte("FIRST=1\nSECOND=2\nTHIRD=3\n"), 0o644))

	env := map[string]string{
		"NEW_B": "b",
		"NEW_A": "a",
	}

	pairs, err := Compose(base, []string{"NEW_B", "NEW_A", "MISSING"}, lookupFrom(env))
	require.NoError(t, err)

	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.Key)
	}

	require.Equal(t, []string{"FIRST", "SECOND", "THIRD", "NEW_B", "NEW_A"}, keys)
}

// TestComposeMissingBase ensures an absent base file is not an error and the
// whitelist alone can produce the composition.
func TestComposeMissingBase(t *testing.T) {
	t.Parallel()

	pairs, err := Compose(filepath.Join(t.TempDir(), "absent.env"), []string{"ONLY"},
		lookupFrom(map[string]string{"ONLY": "value"}))
	require.NoError(t, err)
	require.Equal(t, []Pair{{Key: "ONLY", Value: "value"}}, pairs)
}

// TestComposeEmpty ensures both sources empty yields nothing to ship.
func TestComposeEmpty(t *testing.T) {
	t.Parallel()

	pairs, err := Compose("", nil, lookupFrom(nil))
	require.NoError(t, err)
	require.Empty(t, pairs)

	path, err := WriteFile(t.TempDir(), pairs)
	require.NoError(t, err)
	require.Empty(t, path)
}

// TestComposeMalformedBase ensures a malformed base file is fatal.
func TestComposeMalformedBase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(base, []byte("NOT A VALID LINE\n"), 0o644))

	_, err := Compose(base, nil, lookupFrom(nil))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfigParse))
}

// TestComposeIdempotent verifies composing twice with identical inputs
// yields identical output.
func TestComposeIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(base, []byte("A=1\nB=2\n"), 0o644))

	lookup := lookupFrom(map[string]string{"C": "3"})

	first, err := Compose(base, []string{"C"}, lookup)
	require.NoError(t, err)

	second, err := Compose(base, []string{"C"}, lookup)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestWriteFile checks the materialized KEY=VALUE format and filename.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := WriteFile(dir, []Pair{{Key: "A", Value: "foo"}, {Key: "B", Value: "bar"}})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, DefaultFilename), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "A=foo\nB=bar\n", string(contents))
}
