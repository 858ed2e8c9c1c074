package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultFilename is the registry-conventional environment file name.
	// The composed file is always shipped under this name at the archive
	// root, regardless of where the base file was read from.
	DefaultFilename = ".env"

	// composedFileMode is the permission for the materialized file.
	composedFileMode os.FileMode = 0o644
)

// ErrConfigParse indicates that the base environment file is malformed.
var ErrConfigParse = errors.New("malformed environment file")

// Pair is one KEY=VALUE entry. Order is preserved end to end: base-file
// order first, then newly introduced whitelist keys in the order given.
type Pair struct {
	Key   string
	Value string
}

// Compose merges the base environment file with whitelisted process
// environment variables. The base file is optional; whitelisted process
// values win on key collision. An empty result means nothing is shipped.
//
// The lookup function supplies process environment values so the composer
// never reads ambient state directly.
func Compose(basePath string, whitelist []string, lookup func(string) (string, bool)) ([]Pair, error) {
	pairs, err := parseBaseFile(basePath)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(pairs))
	for i, pair := range pairs {
		index[pair.Key] = i
	}

	for _, name := range whitelist {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		value, ok := lookup(name)
		if !ok {
			continue
		}

		if i, exists := index[name]; exists {
			pairs[i].Value = value
			continue
		}

		index[name] = len(pairs)
		pairs = append(pairs, Pair{Key: name, Value: value})
	}

	return pairs, nil
}

// WriteFile materializes the composed pairs as KEY=VALUE lines, one per
// line, at the default filename inside dir. Nothing is written when the
// composition is empty; the returned path is empty in that case.
func WriteFile(dir string, pairs []Pair) (string, error) {
	if len(pairs) == 0 {
		return "", nil
	}

	var builder strings.Builder
	for _, pair := range pairs {
		builder.WriteString(pair.Key)
		builder.WriteString("=")
		builder.WriteString(pair.Value)
		builder.WriteString("\n")
	}

	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(builder.String()), composedFileMode); err != nil {
		return "", fmt.Errorf("write composed environment: %w", err)
	}

	return path, nil
}

// parseBaseFile reads the base environment file into ordered pairs.
// A missing file simply yields an empty base layer.
func parseBaseFile(path string) ([]Pair, error) {
	if path == "" {
		return nil, nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read environment file %s: %w", path, err)
	}

	values, err := godotenv.UnmarshalBytes(contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	return orderPairs(contents, values), nil
}

// orderPairs recovers the file order of keys, which the parser's map
// representation loses. Only the first occurrence of a key counts; the
// parser already applied last-write-wins to the values.
func orderPairs(contents []byte, values map[string]string) []Pair {
	pairs := make([]Pair, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	scanner := bufio.NewScanner(strings.NewReader(string(contents)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, _, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)

		value, known := values[key]
		if !known {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	// Keys the line scan could not attribute (exotic quoting) still ship;
	// they are appended after the ordered ones, sorted to keep the
	// composition deterministic.
	var leftovers []string

	for key := range values {
		if _, ok := seen[key]; !ok {
			leftovers = append(leftovers, key)
		}
	}

	sort.Strings(leftovers)

	for _, key := range leftovers {
		pairs = append(pairs, Pair{Key: key, Value: values[key]})
	}

	return pairs
}
