// Package adapter contains filesystem and persistence adapters for the
// velc CLI. They hide direct os access so the workflow logic can be
// tested without touching the disk.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	m "vel.dev/pkg/velc/internal/model"
)

// VelFileExt is the extension of Vel source files.
const VelFileExt = ".vel"

// SourceFSAdapter abstracts source discovery and file access.
type SourceFSAdapter interface {
	// Collect resolves the given path patterns to Vel source files,
	// filtered by the exclude regexps. A pattern ending in "/..."
	// descends recursively; a plain directory is scanned one level
	// deep; a file path is taken as-is. No patterns means "./...".
	Collect(ctx context.Context, paths []m.Path, exclude []string) ([]m.Source, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// HashFile returns a stable fingerprint (SHA-256) for the file at
	// path.
	HashFile(path m.Path) (string, error)
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Collect walks the requested paths and returns every matching Vel
// source, in deterministic walk order.
func (a *LocalSourceFSAdapter) Collect(ctx context.Context, paths []m.Path, exclude []string) ([]m.Source, error) {
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	filters, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	var sources []m.Source

	seen := make(map[string]struct{})

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(pattern)

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", pattern, err)
		}

		if !info.IsDir() {
			if err := a.appendSource(&sources, seen, filepath.Dir(root), root, filters); err != nil {
				return nil, err
			}

			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if !recursive && path != root {
					return filepath.SkipDir
				}

				return nil
			}

			if filepath.Ext(path) != VelFileExt {
				return nil
			}

			return a.appendSource(&sources, seen, root, path, filters)
		})
		if err != nil {
			return nil, err
		}
	}

	return sources, nil
}

func (a *LocalSourceFSAdapter) appendSource(sources *[]m.Source, seen map[string]struct{}, root, path string, filters []*regexp.Regexp) error {
	full, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if _, dup := seen[full]; dup {
		return nil
	}

	short, err := filepath.Rel(root, path)
	if err != nil {
		short = path
	}

	for _, filter := range filters {
		if filter.MatchString(path) || filter.MatchString(short) {
			return nil
		}
	}

	hash, err := a.HashFile(m.Path(path))
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}

	seen[full] = struct{}{}

	*sources = append(*sources, m.Source{Origin: &m.File{
		FullPath:  m.Path(full),
		ShortPath: m.Path(short),
		Hash:      hash,
	}})

	return nil
}

// splitPattern separates a Go-style "dir/..." pattern into its root
// and recursion flag.
func splitPattern(pattern m.Path) (string, bool) {
	p := string(pattern)

	if p == "..." {
		return ".", true
	}

	if strings.HasSuffix(p, "/...") {
		root := strings.TrimSuffix(p, "/...")
		if root == "" {
			root = "."
		}

		return root, true
	}

	return p, false
}

func compileExcludes(exclude []string) ([]*regexp.Regexp, error) {
	filters := make([]*regexp.Regexp, 0, len(exclude))

	for _, expr := range exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}

		filters = append(filters, re)
	}

	return filters, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
