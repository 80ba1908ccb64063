// Package preset provides named bundles of ignore patterns and extension
// allow-lists for common project types.
package preset

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtin []byte

// Preset is a named set of extra ignore patterns and included extensions.
type Preset struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description"`
	Ignore      []string `yaml:"ignore"`
	Extensions  []string `yaml:"extensions"`
}

var (
	loadOnce sync.Once
	presets  map[string]Preset
	loadErr  error
)

// Parse decodes a YAML document mapping preset names to presets.
func Parse(data []byte) (map[string]Preset, error) {
	var raw map[string]Preset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	parsed := make(map[string]Preset, len(raw))
	for name, p := range raw {
		p.Name = strings.ToLower(name)
		parsed[p.Name] = p
	}
	return parsed, nil
}

func load() (map[string]Preset, error) {
	loadOnce.Do(func() {
		presets, loadErr = Parse(builtin)
	})
	return presets, loadErr
}

// Lookup returns the built-in preset with the given name (case-insensitive).
func Lookup(name string) (Preset, error) {
	all, err := load()
	if err != nil {
		return Preset{}, err
	}
	p, ok := all[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	// Hand out copies so callers cannot modify the shared table.
	p.Ignore = append([]string(nil), p.Ignore...)
	p.Extensions = append([]string(nil), p.Extensions...)
	return p, nil
}

// Names returns the sorted names of all built-in presets.
func Names() []string {
	all, _ := load()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
