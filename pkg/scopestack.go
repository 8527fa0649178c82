// Package pkg is a package that provides utilities for velc.
package pkg

// ScopeStack is a generic stack of lexical scopes mapping identifiers
// to tracker state. S is typically a pointer to a mutable state
// record; each semantic checker owns an independent instance.
//
// Scopes push and pop in strict LIFO order with tree traversal. An
// unmatched Exit is a traversal bug, not a runtime condition, and
// panics.
type ScopeStack[S any] struct {
	scopes []map[string]S
}

// NewScopeStack creates an empty stack with no active scope.
func NewScopeStack[S any]() *ScopeStack[S] {
	return &ScopeStack[S]{}
}

// Enter pushes a new innermost scope.
func (s *ScopeStack[S]) Enter() {
	s.scopes = append(s.scopes, make(map[string]S))
}

// Exit pops the innermost scope, destroying every state declared in it.
func (s *ScopeStack[S]) Exit() {
	if len(s.scopes) == 0 {
		panic("scopestack: Exit without matching Enter")
	}

	s.scopes = s.scopes[:len(s.scopes)-1]
}

// HasActiveScope reports whether any scope exists.
func (s *ScopeStack[S]) HasActiveScope() bool {
	return len(s.scopes) > 0
}

// Depth returns the number of active scopes.
func (s *ScopeStack[S]) Depth() int {
	return len(s.scopes)
}

// Declare inserts state into the innermost scope, shadowing any outer
// declaration of the same name. Callers may declare before any
// explicit Enter; an implicit scope is created lazily.
func (s *ScopeStack[S]) Declare(name string, state S) {
	if len(s.scopes) == 0 {
		s.Enter()
	}

	s.scopes[len(s.scopes)-1][name] = state
}

// Lookup resolves name against the nearest enclosing scope.
func (s *ScopeStack[S]) Lookup(name string) (S, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if state, ok := s.scopes[i][name]; ok {
			return state, true
		}
	}

	var zero S

	return zero, false
}

// Update mutates the state of name in place. Absence is a silent
// no-op: an untracked identifier is a constant or external symbol,
// not an error at this layer.
func (s *ScopeStack[S]) Update(name string, mutate func(S)) {
	if state, ok := s.Lookup(name); ok {
		mutate(state)
	}
}

// Snapshot deep-copies every state reachable through the scope chain
// using clone, deduplicated so a shadowed name contributes only the
// innermost state.
func (s *ScopeStack[S]) Snapshot(clone func(S) S) map[string]S {
	saved := make(map[string]S)

	for i := len(s.scopes) - 1; i >= 0; i-- {
		for name, state := range s.scopes[i] {
			if _, seen := saved[name]; !seen {
				saved[name] = clone(state)
			}
		}
	}

	return saved
}

// Apply pairs every snapshot entry with the variable currently bound
// to that name, if any, and hands both to apply. Variables that no
// longer resolve are skipped; Apply never creates or deletes state,
// callers reset flags in place. Restore-after-branch and
// merge-after-loop are both thin wrappers over this.
func (s *ScopeStack[S]) Apply(snapshot map[string]S, apply func(current, saved S)) {
	for name, saved := range snapshot {
		if current, ok := s.Lookup(name); ok {
			apply(current, saved)
		}
	}
}
