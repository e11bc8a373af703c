package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"predictd/internal/common/fsutil"
	"predictd/internal/scoring"
	"predictd/pkg/types"
)

//go:embed builtin.yaml
var builtinYAML []byte

// manifest is the on-disk shape of a definition file. A file either lists
// several models under `models` or holds a single top-level definition.
type manifest struct {
	Models []types.ModelDefinition `json:"models" yaml:"models" toml:"models"`
}

// NormalizeDomain case-folds and trims a domain tag for comparisons.
func NormalizeDomain(domain string) string {
	return cases.Fold().String(strings.TrimSpace(domain))
}

// IsDefinitionFile reports whether name has a supported definition extension.
func IsDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}

// Builtin returns the bundled model set used when no models directory is configured.
func Builtin() ([]types.ModelDefinition, error) {
	defs, err := decode(builtinYAML, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin models: %w", err)
	}
	return finalize(defs)
}

// LoadDir scans a directory for definition files (*.yaml, *.yml, *.json, *.toml)
// in filename order and builds the registry. Names must be unique across files.
func LoadDir(dir string) ([]types.ModelDefinition, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var all []types.ModelDefinition
	for _, e := range entries {
		if e.IsDir() || !IsDefinitionFile(e.Name()) {
			continue
		}
		p := filepath.Join(abs, e.Name())
		defs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)
	}
	return finalize(all)
}

// LoadFile reads the definitions in a single file.
func LoadFile(path string) ([]types.ModelDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := decode(b, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for i := range defs {
		defs[i].Source = path
	}
	return defs, nil
}

func decode(b []byte, ext string) ([]types.ModelDefinition, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	unmarshal := func(v any) error {
		switch ext {
		case ".yaml", ".yml":
			return yaml.Unmarshal(b, v)
		case ".json":
			return json.Unmarshal(b, v)
		case ".toml":
			return toml.Unmarshal(b, v)
		default:
			return fmt.Errorf("unsupported definition extension: %s", ext)
		}
	}
	var m manifest
	if err := unmarshal(&m); err != nil {
		return nil, err
	}
	if len(m.Models) > 0 {
		return m.Models, nil
	}
	var single types.ModelDefinition
	if err := unmarshal(&single); err != nil {
		return nil, err
	}
	if single.Name == "" && single.Domain == "" {
		return nil, nil
	}
	return []types.ModelDefinition{single}, nil
}

// finalize validates definitions and rejects duplicate names.
func finalize(defs []types.ModelDefinition) ([]types.ModelDefinition, error) {
	seen := make(map[string]string, len(defs))
	for i := range defs {
		d := &defs[i]
		d.Name = strings.TrimSpace(d.Name)
		d.Domain = strings.TrimSpace(d.Domain)
		d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
		if err := scoring.Validate(*d); err != nil {
			return nil, err
		}
		if prev, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("duplicate model name %q (%s, %s)", d.Name, prev, sourceOrBuiltin(d.Source))
		}
		seen[d.Name] = sourceOrBuiltin(d.Source)
	}
	return defs, nil
}

func sourceOrBuiltin(s string) string {
	if s == "" {
		return "builtin"
	}
	return filepath.Base(s)
}
