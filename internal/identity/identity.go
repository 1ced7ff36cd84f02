// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package identity defines the host's player/world identity registry as
// consumed by the service bridge. The registry resolves display handles
// to stable actor identifiers, reports the scope an actor is currently
// in, and tracks session liveness. Tollgate consumes this interface; it
// never owns the data behind it.
package identity

import (
	"errors"

	"github.com/oklog/ulid/v2"

	"github.com/tollgate/tollgate/internal/scope"
)

// ErrUnknownActor is returned when a handle or actor ID is not known to
// the registry.
var ErrUnknownActor = errors.New("unknown actor")

// Actor is a stable identity plus an optional display handle. The ID is
// immutable for the lifetime of the actor; the handle may change.
type Actor struct {
	ID     ulid.ULID
	Handle string
}

// Resolver is the host-provided identity registry.
type Resolver interface {
	// CurrentScope returns the scope the actor is currently in.
	// Returns ErrUnknownActor (possibly wrapped) for unknown actors.
	CurrentScope(actor ulid.ULID) (scope.Scope, error)

	// Resolve maps a display handle to an Actor.
	// Returns ErrUnknownActor (possibly wrapped) for unknown handles.
	Resolve(handle string) (Actor, error)

	// Online reports whether the actor has a live session. Transient
	// permission grants are only meaningful for online actors.
	Online(actor ulid.ULID) bool
}
