// Package catalog holds the static template tables: channel presets,
// composition styles, gospel themes and niche topic tables. The tables
// are embedded YAML, decoded once and never mutated.
package catalog

import (
	"embed"
	"fmt"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type tables struct {
	channels channelFile
	styles   styleFile
	gospel   gospelFile
	niches   map[string]Niche
}

var (
	loadOnce sync.Once
	loaded   *tables
)

func data() *tables {
	loadOnce.Do(func() {
		t := &tables{}
		mustDecode("data/channels.yaml", &t.channels)
		mustDecode("data/styles.yaml", &t.styles)
		mustDecode("data/gospel.yaml", &t.gospel)
		mustDecode("data/niches.yaml", &t.niches)
		loaded = t
	})
	return loaded
}

// mustDecode panics on malformed embedded data.
func mustDecode(name string, v any) {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("catalog: read %s: %v", name, err))
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		panic(fmt.Sprintf("catalog: decode %s: %v", name, err))
	}
}

// UnknownKeyError is returned by every lookup for a key not in the table.
type UnknownKeyError struct {
	Kind  string
	Key   string
	Valid []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s must be one of: %v", e.Kind, e.Valid)
}

func lookup[T any](kind string, m map[string]T, key string) (T, error) {
	v, ok := m[key]
	if !ok {
		var zero T
		return zero, &UnknownKeyError{Kind: kind, Key: key, Valid: sortedKeys(m)}
	}
	return v, nil
}

func sortedKeys[T any](m map[string]T) []string {
	return slices.Sorted(maps.Keys(m))
}
