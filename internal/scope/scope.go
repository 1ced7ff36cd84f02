// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package scope defines the partition model for permission and chat
// records: a record lives either in the scope-independent global layer
// or in a named world overlay. Reads from a named scope that find no
// record fall through to the global layer exactly once; writes to a
// named scope never touch the global layer.
package scope

// Scope identifies the partition a record applies to.
// The zero value is the global scope; use Named to target a world.
// Scope is a value type and safe to copy and compare with ==.
type Scope struct {
	world string
}

// Global is the scope-independent base layer.
var Global = Scope{}

// Named returns the scope for the given world.
// An empty world name means global: callers that receive an optional
// world string can pass it through without special-casing absence.
func Named(world string) Scope {
	return Scope{world: world}
}

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool {
	return s.world == ""
}

// World returns the world name and whether the scope is named.
func (s Scope) World() (string, bool) {
	return s.world, s.world != ""
}

// String returns "global" or "world:<name>".
func (s Scope) String() string {
	if s.world == "" {
		return "global"
	}
	return "world:" + s.world
}

// LookupKey joins a subject key and a scope into the canonical lookup
// key used by scoped stores. Pure function, no failure mode: an
// unresolvable subject is the caller's problem, absence of a scope is
// global by definition.
func LookupKey(subject string, s Scope) string {
	return subject + "@" + s.String()
}
