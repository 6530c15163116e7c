package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/formwizard/internal/dto"
	"github.com/aretw0/formwizard/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.DefinitionLoader for a single YAML or JSON file.
type Loader struct {
	Path string
}

// NewLoader creates a loader for path. The format is picked from the extension.
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// IsDefinitionFile reports whether path has an extension this loader understands.
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Load reads and decodes the definition file.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	raw, err := Parse(filepath.Ext(l.Path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}

	def, err := dto.DecodeDefinition(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return def, nil
}

// ListSteps returns the step keys in file order.
func (l *Loader) ListSteps(ctx context.Context) ([]string, error) {
	def, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(def.Steps))
	for i, s := range def.Steps {
		keys[i] = s.Key
	}
	return keys, nil
}

// Parse decodes YAML or JSON (by extension) into a generic document.
// JSON numbers are kept as json.Number so that step keys keep their exact spelling.
func Parse(ext string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definition format %q", ext)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty definition")
	}
	return raw, nil
}
