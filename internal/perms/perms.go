// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package perms defines the permission service abstraction shared by
// host extensions: boolean permission nodes and group membership,
// resolved per actor-or-group and scope, plus session-bound transient
// grants owned by the granting provider.
//
// Permission nodes are dotted strings ("shop.sell", "admin.kick").
// Providers may support wildcard grants using gobwas/glob syntax with
// '.' as the segment separator:
//   - "shop.*" matches "shop.sell" but not "shop.sell.bulk"
//   - "shop.**" matches all descendants
//
// The interface carries the minimal provider obligations; call shapes
// that differ only in how the actor is identified are free functions
// that resolve to the canonical (scope, actor ID) form.
package perms

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/identity"
	"github.com/tollgate/tollgate/internal/scope"
)

// Service is the permission provider contract.
//
// Query operations (HasIn, GroupHas, InGroup, Groups, PrimaryGroup)
// never fail: an absent record reads as false or empty. Mutations
// return a typed error on structural failure (unsupported operation,
// invalid node), never a silent no-op that is indistinguishable from
// "permission absent".
type Service interface {
	// Name identifies the provider.
	Name() string

	// HasGroupSupport reports whether group operations are meaningful
	// for this provider. Group mutations on a provider without group
	// support fail with code UNSUPPORTED.
	HasGroupSupport() bool

	// HasIn reports whether the actor holds node in the given scope.
	HasIn(sc scope.Scope, actor ulid.ULID, node string) bool

	// Grant adds node for the actor in the addressed scope. A provider
	// without scoped storage may legally apply every grant globally and
	// still report success.
	Grant(sc scope.Scope, actor ulid.ULID, node string) error

	// Revoke removes node for the actor in the addressed scope.
	Revoke(sc scope.Scope, actor ulid.ULID, node string) error

	// GrantTransient adds a session-bound grant through the attachment
	// owned by this provider for the actor. Fails with UNSUPPORTED if
	// the actor has no live session.
	GrantTransient(actor ulid.ULID, node string) error

	// RevokeTransient removes a session-bound grant. Fails with
	// UNSUPPORTED if the actor has no live session; removing a node the
	// attachment does not hold is a no-op.
	RevokeTransient(actor ulid.ULID, node string) error

	// GroupHas reports whether the group holds node in the given scope.
	GroupHas(sc scope.Scope, group, node string) bool

	// GroupGrant adds node to the group in the addressed scope.
	GroupGrant(sc scope.Scope, group, node string) error

	// GroupRevoke removes node from the group in the addressed scope.
	GroupRevoke(sc scope.Scope, group, node string) error

	// InGroup reports whether the actor is a member of group in the
	// given scope.
	InGroup(sc scope.Scope, actor ulid.ULID, group string) bool

	// AddToGroup adds the actor to group in the addressed scope.
	AddToGroup(sc scope.Scope, actor ulid.ULID, group string) error

	// RemoveFromGroup removes the actor from group in the addressed
	// scope.
	RemoveFromGroup(sc scope.Scope, actor ulid.ULID, group string) error

	// Groups returns the groups the actor belongs to in the given
	// scope. Order is provider-defined.
	Groups(sc scope.Scope, actor ulid.ULID) []string

	// PrimaryGroup returns the actor's designated primary group in the
	// given scope, if any.
	PrimaryGroup(sc scope.Scope, actor ulid.ULID) (string, bool)

	// SetPrimaryGroup designates the actor's primary group in the
	// addressed scope. The actor need not already be a member.
	SetPrimaryGroup(sc scope.Scope, actor ulid.ULID, group string) error

	// AllGroups returns every group known to the provider, across all
	// scopes. Order is provider-defined.
	AllGroups() []string
}

// ValidateNode rejects empty or whitespace-bearing node names.
func ValidateNode(node string) error {
	if node == "" {
		return oops.In("perms").Code("INVALID_ARGUMENT").New("permission node cannot be empty")
	}
	if strings.ContainsAny(node, " \t\n") {
		return oops.In("perms").
			Code("INVALID_ARGUMENT").
			With("node", node).
			New("permission node cannot contain whitespace")
	}
	return nil
}

// ValidateGroup rejects empty group names.
func ValidateGroup(group string) error {
	if group == "" {
		return oops.In("perms").Code("INVALID_ARGUMENT").New("group name cannot be empty")
	}
	return nil
}

// ActorKey returns the canonical subject key for an actor.
func ActorKey(actor ulid.ULID) string {
	return "actor:" + actor.String()
}

// GroupKey returns the canonical subject key for a group.
func GroupKey(group string) string {
	return "group:" + group
}

// Has reports whether the actor holds node in their current scope, as
// reported by the identity registry. This is the unscoped convenience
// form; it never fails: an unknown actor is checked against the global
// layer only.
func Has(svc Service, res identity.Resolver, actor ulid.ULID, node string) bool {
	sc, err := res.CurrentScope(actor)
	if err != nil {
		sc = scope.Global
	}
	return svc.HasIn(sc, actor, node)
}

// HasHandle resolves a display handle and checks node in the resolved
// actor's current scope. Unlike Has, handle resolution can fail.
func HasHandle(svc Service, res identity.Resolver, handle, node string) (bool, error) {
	actor, err := res.Resolve(handle)
	if err != nil {
		return false, oops.In("perms").With("handle", handle).Wrap(err)
	}
	return Has(svc, res, actor.ID, node), nil
}

// GrantCurrent grants node in the actor's current scope. This is a
// scope-specific write: granting globally requires passing scope.Global
// to Grant explicitly.
func GrantCurrent(svc Service, res identity.Resolver, actor ulid.ULID, node string) error {
	sc, err := res.CurrentScope(actor)
	if err != nil {
		return oops.In("perms").With("actor", actor.String()).Wrap(err)
	}
	return svc.Grant(sc, actor, node)
}

// RevokeCurrent revokes node in the actor's current scope.
func RevokeCurrent(svc Service, res identity.Resolver, actor ulid.ULID, node string) error {
	sc, err := res.CurrentScope(actor)
	if err != nil {
		return oops.In("perms").With("actor", actor.String()).Wrap(err)
	}
	return svc.Revoke(sc, actor, node)
}

// InGroupCurrent reports group membership in the actor's current scope.
func InGroupCurrent(svc Service, res identity.Resolver, actor ulid.ULID, group string) bool {
	sc, err := res.CurrentScope(actor)
	if err != nil {
		sc = scope.Global
	}
	return svc.InGroup(sc, actor, group)
}
