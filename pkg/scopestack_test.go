package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type counter struct {
	value int
}

func TestScopeStack(t *testing.T) {
	t.Run("NewScopeStack has no active scope", func(t *testing.T) {
		stack := NewScopeStack[*counter]()
		require.False(t, stack.HasActiveScope())
		require.Equal(t, 0, stack.Depth())
	})

	t.Run("Enter and Exit track depth", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		require.True(t, stack.HasActiveScope())
		require.Equal(t, 1, stack.Depth())

		stack.Enter()
		require.Equal(t, 2, stack.Depth())

		stack.Exit()
		stack.Exit()
		require.False(t, stack.HasActiveScope())
	})

	t.Run("Exit without Enter panics", func(t *testing.T) {
		stack := NewScopeStack[*counter]()
		require.Panics(t, func() { stack.Exit() })
	})

	t.Run("Declare without Enter creates an implicit scope", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Declare("x", &counter{value: 1})

		require.True(t, stack.HasActiveScope())

		state, ok := stack.Lookup("x")
		require.True(t, ok)
		require.Equal(t, 1, state.value)
	})

	t.Run("Lookup resolves innermost declaration first", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Declare("x", &counter{value: 1})

		stack.Enter()
		stack.Declare("x", &counter{value: 2})

		state, ok := stack.Lookup("x")
		require.True(t, ok)
		require.Equal(t, 2, state.value)

		stack.Exit()

		state, ok = stack.Lookup("x")
		require.True(t, ok)
		require.Equal(t, 1, state.value)
	})

	t.Run("Lookup misses after owning scope pops", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Enter()
		stack.Declare("inner", &counter{value: 7})
		stack.Exit()

		_, ok := stack.Lookup("inner")
		require.False(t, ok)
	})

	t.Run("Update mutates in place and ignores unknown names", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Declare("x", &counter{value: 1})

		stack.Update("x", func(state *counter) { state.value = 10 })
		stack.Update("missing", func(state *counter) { t.Fatal("must not be called") })

		state, _ := stack.Lookup("x")
		require.Equal(t, 10, state.value)
	})

	t.Run("Snapshot dedups shadowed names to the innermost state", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Declare("x", &counter{value: 1})
		stack.Declare("y", &counter{value: 2})

		stack.Enter()
		stack.Declare("x", &counter{value: 3})

		saved := stack.Snapshot(func(s *counter) *counter {
			dup := *s
			return &dup
		})

		require.Len(t, saved, 2)
		require.Equal(t, 3, saved["x"].value)
		require.Equal(t, 2, saved["y"].value)
	})

	t.Run("Snapshot copies are independent of live state", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Declare("x", &counter{value: 1})

		saved := stack.Snapshot(func(s *counter) *counter {
			dup := *s
			return &dup
		})

		stack.Update("x", func(state *counter) { state.value = 99 })

		require.Equal(t, 1, saved["x"].value)
	})

	t.Run("Apply restores live state from a snapshot", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Declare("x", &counter{value: 1})
		stack.Declare("y", &counter{value: 2})

		saved := stack.Snapshot(func(s *counter) *counter {
			dup := *s
			return &dup
		})

		stack.Update("x", func(state *counter) { state.value = 50 })
		stack.Update("y", func(state *counter) { state.value = 60 })

		stack.Apply(saved, func(current, snap *counter) {
			current.value = snap.value
		})

		x, _ := stack.Lookup("x")
		y, _ := stack.Lookup("y")
		require.Equal(t, 1, x.value)
		require.Equal(t, 2, y.value)
	})

	t.Run("Apply skips names that no longer resolve", func(t *testing.T) {
		stack := NewScopeStack[*counter]()

		stack.Enter()
		stack.Enter()
		stack.Declare("gone", &counter{value: 5})

		saved := stack.Snapshot(func(s *counter) *counter {
			dup := *s
			return &dup
		})

		stack.Exit()

		called := 0
		stack.Apply(saved, func(current, snap *counter) { called++ })
		require.Equal(t, 0, called)
	})
}
