package adapter

import (
	"fmt"
	"os"

	"vel.dev/pkg/velc/internal/ast"
	m "vel.dev/pkg/velc/internal/model"
	"vel.dev/pkg/velc/internal/parser"
)

// UnitAdapter encapsulates Vel-specific parsing so the domain layer
// can focus on analysis rules while delegating compilation details to
// an infrastructure component.
type UnitAdapter interface {
	// Load reads and parses one compilation unit.
	Load(source m.Source) (*ast.Program, error)

	// ParseSource parses already-loaded source text, for callers that
	// hold the bytes themselves.
	ParseSource(name string, src []byte) (*ast.Program, error)
}

// LocalUnitAdapter provides a concrete UnitAdapter backed by the Vel
// parser.
type LocalUnitAdapter struct{}

// NewLocalUnitAdapter constructs a LocalUnitAdapter.
func NewLocalUnitAdapter() *LocalUnitAdapter {
	return &LocalUnitAdapter{}
}

// Load reads the source file from disk and parses it.
func (a *LocalUnitAdapter) Load(source m.Source) (*ast.Program, error) {
	if source.Origin == nil {
		return nil, fmt.Errorf("source has no origin file")
	}

	content, err := os.ReadFile(string(source.Origin.FullPath))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source.Origin.FullPath, err)
	}

	return a.ParseSource(string(source.Origin.ShortPath), content)
}

// ParseSource parses source text into a syntax tree.
func (a *LocalUnitAdapter) ParseSource(name string, src []byte) (*ast.Program, error) {
	prog, err := parser.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", name, err)
	}

	return prog, nil
}
