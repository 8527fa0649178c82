package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "vel.dev/pkg/velc/internal/model"
)

// InteropAdapter loads struct field sets for types defined outside
// the Vel sources, typically mirrored from C headers. The mapping is
// merged additively into the per-unit struct registry before analysis
// begins.
type InteropAdapter interface {
	// LoadFields reads a YAML mapping of type name to field names.
	LoadFields(path m.Path) (map[string][]string, error)
}

// interopFile is the on-disk schema:
//
//	structs:
//	  Header:
//	    - magic
//	    - version
type interopFile struct {
	Structs map[string][]string `yaml:"structs"`
}

// LocalInteropAdapter reads interop field files from disk.
type LocalInteropAdapter struct{}

// NewLocalInteropAdapter constructs a LocalInteropAdapter.
func NewLocalInteropAdapter() *LocalInteropAdapter {
	return &LocalInteropAdapter{}
}

// LoadFields decodes the interop file at path.
func (a *LocalInteropAdapter) LoadFields(path m.Path) (map[string][]string, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read interop file: %w", err)
	}

	var file interopFile

	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode interop file %s: %w", path, err)
	}

	for typeName, fields := range file.Structs {
		if len(fields) == 0 {
			return nil, fmt.Errorf("interop type %q has no fields", typeName)
		}
	}

	return file.Structs, nil
}
