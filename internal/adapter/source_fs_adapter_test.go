package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	m "vel.dev/pkg/velc/internal/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}

	return root
}

func shortPaths(sources []m.Source) []string {
	paths := make([]string, 0, len(sources))
	for _, s := range sources {
		paths = append(paths, string(s.Origin.ShortPath))
	}

	return paths
}

func TestLocalSourceFSAdapter_Collect(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	root := writeTree(t, map[string]string{
		"main.vel":       "int main() { return 0; }",
		"lib/util.vel":   "int util() { return 1; }",
		"lib/deep/x.vel": "int x() { return 2; }",
		"notes.txt":      "not a source file",
	})

	t.Run("recursive pattern descends", func(t *testing.T) {
		sources, err := adapter.Collect(ctx, []m.Path{m.Path(root + "/...")}, nil)
		require.NoError(t, err)
		require.Len(t, sources, 3)
		require.ElementsMatch(t,
			[]string{"main.vel", filepath.Join("lib", "util.vel"), filepath.Join("lib", "deep", "x.vel")},
			shortPaths(sources),
		)
	})

	t.Run("plain directory scans one level", func(t *testing.T) {
		sources, err := adapter.Collect(ctx, []m.Path{m.Path(filepath.Join(root, "lib"))}, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"util.vel"}, shortPaths(sources))
	})

	t.Run("explicit file path", func(t *testing.T) {
		sources, err := adapter.Collect(ctx, []m.Path{m.Path(filepath.Join(root, "main.vel"))}, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"main.vel"}, shortPaths(sources))
		require.NotEmpty(t, sources[0].Origin.Hash)
	})

	t.Run("duplicate patterns dedup", func(t *testing.T) {
		sources, err := adapter.Collect(ctx, []m.Path{
			m.Path(filepath.Join(root, "main.vel")),
			m.Path(filepath.Join(root, "main.vel")),
		}, nil)
		require.NoError(t, err)
		require.Len(t, sources, 1)
	})

	t.Run("exclude filters by regex", func(t *testing.T) {
		sources, err := adapter.Collect(ctx, []m.Path{m.Path(root + "/...")}, []string{`deep/`})
		require.NoError(t, err)
		require.Len(t, sources, 2)
	})

	t.Run("invalid exclude pattern errors", func(t *testing.T) {
		_, err := adapter.Collect(ctx, []m.Path{m.Path(root)}, []string{"("})
		require.Error(t, err)
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := adapter.Collect(ctx, []m.Path{m.Path(filepath.Join(root, "nope"))}, nil)
		require.Error(t, err)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := adapter.Collect(cancelled, []m.Path{m.Path(root)}, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := writeTree(t, map[string]string{
		"a.vel": "int main() { return 0; }",
		"b.vel": "int main() { return 0; }",
		"c.vel": "int main() { return 1; }",
	})

	hashA, err := adapter.HashFile(m.Path(filepath.Join(root, "a.vel")))
	require.NoError(t, err)
	require.NotEmpty(t, hashA)

	hashB, err := adapter.HashFile(m.Path(filepath.Join(root, "b.vel")))
	require.NoError(t, err)
	require.Equal(t, hashA, hashB)

	hashC, err := adapter.HashFile(m.Path(filepath.Join(root, "c.vel")))
	require.NoError(t, err)
	require.NotEqual(t, hashA, hashC)

	_, err = adapter.HashFile(m.Path(filepath.Join(root, "missing.vel")))
	require.Error(t, err)
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := writeTree(t, map[string]string{"a.vel": "int main() { return 0; }"})

	content, err := adapter.ReadFile(m.Path(filepath.Join(root, "a.vel")))
	require.NoError(t, err)
	require.Equal(t, "int main() { return 0; }", string(content))
}
