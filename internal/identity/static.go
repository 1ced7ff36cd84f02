// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package identity

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/scope"
)

// Static is an in-memory Resolver for tests and single-process hosts.
// Actors are added explicitly; scope and liveness are mutated through
// setters as the host moves players around.
//
// Static is safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	byID     map[ulid.ULID]Actor
	byHandle map[string]ulid.ULID
	scopes   map[ulid.ULID]scope.Scope
	online   map[ulid.ULID]struct{}
	onLogout []func(ulid.ULID)
}

// NewStatic creates an empty static identity registry.
func NewStatic() *Static {
	return &Static{
		byID:     make(map[ulid.ULID]Actor),
		byHandle: make(map[string]ulid.ULID),
		scopes:   make(map[ulid.ULID]scope.Scope),
		online:   make(map[ulid.ULID]struct{}),
	}
}

// Add registers an actor. The actor starts offline in the global scope.
func (s *Static) Add(actor Actor) error {
	if actor.ID.Compare(ulid.ULID{}) == 0 {
		return oops.In("identity").Code("INVALID_ARGUMENT").New("actor ID cannot be zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[actor.ID] = actor
	if actor.Handle != "" {
		s.byHandle[actor.Handle] = actor.ID
	}
	return nil
}

// SetScope moves an actor to the given scope.
func (s *Static) SetScope(actor ulid.ULID, sc scope.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[actor] = sc
}

// Login marks the actor's session live.
func (s *Static) Login(actor ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[actor] = struct{}{}
}

// Logout ends the actor's session and fires registered logout hooks.
// Session-bound state (transient permission attachments) is torn down
// through those hooks.
func (s *Static) Logout(actor ulid.ULID) {
	s.mu.Lock()
	delete(s.online, actor)
	hooks := make([]func(ulid.ULID), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(actor)
	}
}

// OnLogout registers a hook invoked with the actor ID whenever a
// session ends.
func (s *Static) OnLogout(hook func(ulid.ULID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, hook)
}

// CurrentScope implements Resolver.
func (s *Static) CurrentScope(actor ulid.ULID) (scope.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[actor]; !ok {
		return scope.Global, oops.In("identity").
			Code("NOT_FOUND").
			With("actor", actor.String()).
			Wrap(ErrUnknownActor)
	}
	return s.scopes[actor], nil
}

// Resolve implements Resolver.
func (s *Static) Resolve(handle string) (Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHandle[handle]
	if !ok {
		return Actor{}, oops.In("identity").
			Code("NOT_FOUND").
			With("handle", handle).
			Wrap(ErrUnknownActor)
	}
	return s.byID[id], nil
}

// Online implements Resolver.
func (s *Static) Online(actor ulid.ULID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[actor]
	return ok
}
