// Package envfile parses dotenv-style configuration files and merges them
// with an ambient process environment.
//
// The root .env file supplies defaults only: a key already present in the
// ambient environment always wins. Parsing is permissive by default so a
// half-edited file never blocks a dev workflow; Strict mode turns malformed
// lines into errors for callers that want validation.
package envfile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

const exportPrefix = "export "

// ErrMalformed marks strict-mode parse failures so callers can tell them
// apart from read failures.
var ErrMalformed = errors.New("malformed env file")

// Options controls parser behavior.
type Options struct {
	// Strict makes malformed lines (no '=' separator, empty key) an error
	// instead of silently skipping them.
	Strict bool
}

// Map holds parsed key-value pairs from a single env file.
type Map map[string]string

// Load reads and parses the env file at path. The second return reports
// whether the file existed: a missing file is not an error and yields an
// empty map, but callers are expected to warn so a silently absent root
// file is not mistaken for an empty one. Any other read failure is fatal
// to the caller.
func Load(path string, opts Options) (Map, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, false, nil
		}

		return nil, false, fmt.Errorf("read env file %s: %w", path, err)
	}

	m, err := Parse(string(data), opts)
	if err != nil {
		return nil, true, err
	}

	return m, true, nil
}

// Parse parses dotenv-style content into a Map.
//
// Rules per line: blank lines and '#' comments are skipped, a leading
// "export " prefix is tolerated, the first '=' splits key from value, both
// sides are trimmed, and one matching pair of surrounding quotes (single or
// double) is stripped from the value. Later duplicate keys overwrite
// earlier ones.
func Parse(content string, opts Options) (Map, error) {
	result := Map{}

	for i, raw := range splitLines(content) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, exportPrefix)

		key, value, found := strings.Cut(line, "=")

		key = strings.TrimSpace(key)
		if !found || key == "" {
			if opts.Strict {
				return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, i+1, strings.TrimSpace(raw))
			}

			continue
		}

		result[key] = unquote(strings.TrimSpace(value))
	}

	return result, nil
}

// Merge extends the ambient environment snapshot with every key from m that
// the snapshot does not already define. Ambient entries are never
// overwritten and the input slice is not mutated; file keys are appended in
// sorted order so output is deterministic.
func Merge(ambient []string, m Map) []string {
	present := make(map[string]bool, len(ambient))

	for _, kv := range ambient {
		name, _, _ := strings.Cut(kv, "=")
		present[name] = true
	}

	merged := make([]string, len(ambient), len(ambient)+len(m))
	copy(merged, ambient)

	keys := make([]string, 0, len(m))

	for k := range m {
		if !present[k] {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	for _, k := range keys {
		merged = append(merged, k+"="+m[k])
	}

	return merged
}

// Lookup returns the value for key in an environment snapshot.
func Lookup(env []string, key string) (string, bool) {
	for _, kv := range env {
		name, value, _ := strings.Cut(kv, "=")
		if name == key {
			return value, true
		}
	}

	return "", false
}

// splitLines splits on \n, \r\n, or bare \r.
func splitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	return strings.Split(normalized, "\n")
}

// unquote strips one matching pair of surrounding quotes, if present.
func unquote(value string) string {
	if len(value) < 2 {
		return value
	}

	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}

	return value
}
