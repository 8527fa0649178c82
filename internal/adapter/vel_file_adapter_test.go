package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	m "vel.dev/pkg/velc/internal/model"
)

func TestLocalUnitAdapter_Load(t *testing.T) {
	adapter := NewLocalUnitAdapter()

	t.Run("parses a unit from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "main.vel")
		require.NoError(t, os.WriteFile(path, []byte("int main() { return 0; }"), 0o600))

		prog, err := adapter.Load(m.Source{Origin: &m.File{
			FullPath:  m.Path(path),
			ShortPath: "main.vel",
		}})
		require.NoError(t, err)
		require.Len(t, prog.Decls, 1)
	})

	t.Run("parse errors carry the unit name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.vel")
		require.NoError(t, os.WriteFile(path, []byte("int main() { int x }"), 0o600))

		_, err := adapter.Load(m.Source{Origin: &m.File{
			FullPath:  m.Path(path),
			ShortPath: "broken.vel",
		}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "broken.vel")
	})

	t.Run("nil origin is rejected", func(t *testing.T) {
		_, err := adapter.Load(m.Source{})
		require.Error(t, err)
	})

	t.Run("missing file is reported", func(t *testing.T) {
		_, err := adapter.Load(m.Source{Origin: &m.File{FullPath: "absent.vel"}})
		require.Error(t, err)
	})
}

func TestLocalUnitAdapter_ParseSource(t *testing.T) {
	adapter := NewLocalUnitAdapter()

	prog, err := adapter.ParseSource("inline.vel", []byte("struct S { int a; }"))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)

	_, err = adapter.ParseSource("inline.vel", []byte("struct S {"))
	require.Error(t, err)
}
