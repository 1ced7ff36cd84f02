// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package scope_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tollgate/tollgate/internal/scope"
)

func TestStore_GlobalReadWrite(t *testing.T) {
	s := scope.NewStore[string]()
	s.Set(scope.Global, "k", "v")

	got, ok := s.Get(scope.Global, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStore_NamedFallsBackToGlobal(t *testing.T) {
	s := scope.NewStore[string]()
	s.Set(scope.Global, "k", "base")

	// Fallback law: a named scope with no explicit write reads the
	// global record.
	got, ok := s.Get(scope.Named("nether"), "k")
	require.True(t, ok)
	assert.Equal(t, "base", got)
}

func TestStore_NamedOverridesGlobal(t *testing.T) {
	s := scope.NewStore[string]()
	s.Set(scope.Global, "k", "base")
	s.Set(scope.Named("nether"), "k", "override")

	got, _ := s.Get(scope.Named("nether"), "k")
	assert.Equal(t, "override", got)

	// Writing the named layer never mutates the global one.
	got, _ = s.Get(scope.Global, "k")
	assert.Equal(t, "base", got)

	// Other named scopes still fall through to global.
	got, _ = s.Get(scope.Named("end"), "k")
	assert.Equal(t, "base", got)
}

func TestStore_FallbackIsExactlyOneLevel(t *testing.T) {
	s := scope.NewStore[string]()
	s.Set(scope.Named("nether"), "k", "override")

	// No global record: a different named scope finds nothing. There is
	// no world-to-world chain.
	_, ok := s.Get(scope.Named("end"), "k")
	assert.False(t, ok)

	_, ok = s.Get(scope.Global, "k")
	assert.False(t, ok)
}

func TestStore_GetExact(t *testing.T) {
	s := scope.NewStore[int]()
	s.Set(scope.Global, "k", 1)

	_, ok := s.GetExact(scope.Named("nether"), "k")
	assert.False(t, ok, "GetExact must not fall back")

	v, ok := s.GetExact(scope.Global, "k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestStore_DeleteIsLayerLocal(t *testing.T) {
	s := scope.NewStore[string]()
	s.Set(scope.Global, "k", "base")
	s.Set(scope.Named("nether"), "k", "override")

	assert.True(t, s.Delete(scope.Named("nether"), "k"))

	// Deleting the override restores fallback to the global record.
	got, ok := s.Get(scope.Named("nether"), "k")
	require.True(t, ok)
	assert.Equal(t, "base", got)

	assert.False(t, s.Delete(scope.Named("nether"), "k"), "second delete finds nothing")
	assert.True(t, s.Delete(scope.Global, "k"))
}

func TestStore_Update(t *testing.T) {
	s := scope.NewStore[[]string]()

	s.Update(scope.Global, "k", func(cur []string, _ bool) ([]string, bool) {
		return append(cur, "a"), true
	})
	s.Update(scope.Global, "k", func(cur []string, ok bool) ([]string, bool) {
		assert.True(t, ok)
		return append(cur, "b"), true
	})

	got, ok := s.Get(scope.Global, "k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	// keep=false removes the record entirely.
	s.Update(scope.Global, "k", func(_ []string, _ bool) ([]string, bool) {
		return nil, false
	})
	_, ok = s.Get(scope.Global, "k")
	assert.False(t, ok)
}

func TestStore_Keys(t *testing.T) {
	s := scope.NewStore[int]()
	s.Set(scope.Global, "a", 1)
	s.Set(scope.Global, "b", 2)
	s.Set(scope.Named("nether"), "c", 3)

	assert.ElementsMatch(t, []string{"a", "b"}, s.Keys(scope.Global))
	assert.ElementsMatch(t, []string{"c"}, s.Keys(scope.Named("nether")))
	assert.Empty(t, s.Keys(scope.Named("end")))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := scope.NewStore[int]()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sc := scope.Named("w")
			if n%2 == 0 {
				sc = scope.Global
			}
			for j := 0; j < 100; j++ {
				s.Set(sc, "k", j)
				s.Get(sc, "k")
				s.Update(sc, "k", func(cur int, _ bool) (int, bool) { return cur + 1, true })
			}
		}(i)
	}
	wg.Wait()

	_, ok := s.Get(scope.Global, "k")
	assert.True(t, ok)
}
