package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/timebank/backend/internal/models"
)

// ErrInvalidCatalog wraps every schema or invariant violation in a catalog file.
var ErrInvalidCatalog = errors.New("invalid tool catalog")

//go:embed tools.schema.json
var toolsSchemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("https://timebank.dev/schemas/tools.json", toolsSchemaJSON)
})

type file struct {
	Tools []models.Tool `yaml:"tools"`
}

// ReadFile reads and validates a YAML tool catalog.
func ReadFile(path string) ([]models.Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse validates data against the catalog schema and decodes it. Names must be unique
// ignoring case.
func Parse(data []byte) ([]models.Tool, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Tools))
	for i, t := range f.Tools {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: tools[%d]: %v", ErrInvalidCatalog, i, err)
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate tool %q", ErrInvalidCatalog, t.Name)
		}
		seen[key] = true
	}
	if f.Tools == nil {
		f.Tools = []models.Tool{}
	}
	return f.Tools, nil
}
