// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package perms

import (
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/identity"
	"github.com/tollgate/tollgate/internal/observability"
	"github.com/tollgate/tollgate/internal/scope"
)

// grantSet maps a granted node pattern to its compiled glob.
type grantSet map[string]glob.Glob

// match reports whether any grant in the set covers node.
func (g grantSet) match(node string) bool {
	if _, ok := g[node]; ok {
		return true
	}
	for _, compiled := range g {
		if compiled.Match(node) {
			return true
		}
	}
	return false
}

// clone returns a copy so stored sets are never mutated in place.
func (g grantSet) clone() grantSet {
	next := make(grantSet, len(g)+1)
	for k, v := range g {
		next[k] = v
	}
	return next
}

// Memory is the bundled in-memory permission provider. Grants support
// glob wildcards with '.' as the segment separator; all lookups are
// fast map reads suitable for the host's hot path.
//
// Memory is safe for concurrent use.
type Memory struct {
	name   string
	res    identity.Resolver
	attach *AttachmentStore
	logger *slog.Logger

	players *scope.Store[grantSet]
	groups  *scope.Store[grantSet]
	members *scope.Store[[]string]
	primary *scope.Store[string]

	mu         sync.Mutex
	groupNames []string
	groupSeen  map[string]struct{}
}

var _ Service = (*Memory)(nil)

// NewMemory creates an in-memory permission provider. The attachment
// store is shared host state: pass the same store to every provider so
// EndSession tears down all transient grants for an actor at once.
func NewMemory(name string, res identity.Resolver, attach *AttachmentStore, logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		name:      name,
		res:       res,
		attach:    attach,
		logger:    logger.With("provider", name),
		players:   scope.NewStore[grantSet](),
		groups:    scope.NewStore[grantSet](),
		members:   scope.NewStore[[]string](),
		primary:   scope.NewStore[string](),
		groupSeen: make(map[string]struct{}),
	}
}

// Name implements Service.
func (m *Memory) Name() string { return m.name }

// HasGroupSupport implements Service.
func (m *Memory) HasGroupSupport() bool { return true }

// HasIn implements Service. Resolution order: transient attachments,
// then the actor's own grants, then each group the actor belongs to.
// Absent reads as false; HasIn never fails.
func (m *Memory) HasIn(sc scope.Scope, actor ulid.ULID, node string) bool {
	allowed := m.hasIn(sc, actor, node)
	observability.RecordPermissionCheck(m.name, allowed)
	return allowed
}

func (m *Memory) hasIn(sc scope.Scope, actor ulid.ULID, node string) bool {
	if m.attach.Allows(actor, node) {
		return true
	}
	if set, ok := m.players.Get(sc, ActorKey(actor)); ok && set.match(node) {
		return true
	}
	for _, group := range m.Groups(sc, actor) {
		if m.GroupHas(sc, group, node) {
			return true
		}
	}
	return false
}

// Grant implements Service.
func (m *Memory) Grant(sc scope.Scope, actor ulid.ULID, node string) error {
	return m.grantTo(m.players, sc, ActorKey(actor), node)
}

// Revoke implements Service.
func (m *Memory) Revoke(sc scope.Scope, actor ulid.ULID, node string) error {
	return m.revokeFrom(m.players, sc, ActorKey(actor), node)
}

// GrantTransient implements Service.
func (m *Memory) GrantTransient(actor ulid.ULID, node string) error {
	if err := ValidateNode(node); err != nil {
		return err
	}
	if !m.res.Online(actor) {
		return oops.In("perms").
			Code("UNSUPPORTED").
			With("provider", m.name).
			With("actor", actor.String()).
			New("transient grants require a live session")
	}
	m.attach.Grant(actor, m.name, node)
	return nil
}

// RevokeTransient implements Service.
func (m *Memory) RevokeTransient(actor ulid.ULID, node string) error {
	if err := ValidateNode(node); err != nil {
		return err
	}
	if !m.res.Online(actor) {
		return oops.In("perms").
			Code("UNSUPPORTED").
			With("provider", m.name).
			With("actor", actor.String()).
			New("transient revokes require a live session")
	}
	m.attach.Revoke(actor, m.name, node)
	return nil
}

// GroupHas implements Service.
func (m *Memory) GroupHas(sc scope.Scope, group, node string) bool {
	set, ok := m.groups.Get(sc, GroupKey(group))
	return ok && set.match(node)
}

// GroupGrant implements Service.
func (m *Memory) GroupGrant(sc scope.Scope, group, node string) error {
	if err := ValidateGroup(group); err != nil {
		return err
	}
	if err := m.grantTo(m.groups, sc, GroupKey(group), node); err != nil {
		return err
	}
	m.rememberGroup(group)
	return nil
}

// GroupRevoke implements Service.
func (m *Memory) GroupRevoke(sc scope.Scope, group, node string) error {
	if err := ValidateGroup(group); err != nil {
		return err
	}
	return m.revokeFrom(m.groups, sc, GroupKey(group), node)
}

// InGroup implements Service.
func (m *Memory) InGroup(sc scope.Scope, actor ulid.ULID, group string) bool {
	groups, _ := m.members.Get(sc, ActorKey(actor))
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}

// AddToGroup implements Service. Membership is ordered by insertion;
// adding an existing member is a no-op.
func (m *Memory) AddToGroup(sc scope.Scope, actor ulid.ULID, group string) error {
	if err := ValidateGroup(group); err != nil {
		return err
	}
	m.members.Update(sc, ActorKey(actor), func(cur []string, _ bool) ([]string, bool) {
		for _, g := range cur {
			if g == group {
				return cur, true
			}
		}
		next := make([]string, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, group), true
	})
	m.rememberGroup(group)
	return nil
}

// RemoveFromGroup implements Service.
func (m *Memory) RemoveFromGroup(sc scope.Scope, actor ulid.ULID, group string) error {
	if err := ValidateGroup(group); err != nil {
		return err
	}
	m.members.Update(sc, ActorKey(actor), func(cur []string, ok bool) ([]string, bool) {
		if !ok {
			return nil, false
		}
		next := make([]string, 0, len(cur))
		for _, g := range cur {
			if g != group {
				next = append(next, g)
			}
		}
		return next, len(next) > 0
	})
	return nil
}

// Groups implements Service.
func (m *Memory) Groups(sc scope.Scope, actor ulid.ULID) []string {
	groups, _ := m.members.Get(sc, ActorKey(actor))
	out := make([]string, len(groups))
	copy(out, groups)
	return out
}

// PrimaryGroup implements Service.
func (m *Memory) PrimaryGroup(sc scope.Scope, actor ulid.ULID) (string, bool) {
	return m.primary.Get(sc, ActorKey(actor))
}

// SetPrimaryGroup implements Service.
func (m *Memory) SetPrimaryGroup(sc scope.Scope, actor ulid.ULID, group string) error {
	if err := ValidateGroup(group); err != nil {
		return err
	}
	m.primary.Set(sc, ActorKey(actor), group)
	m.rememberGroup(group)
	return nil
}

// AllGroups implements Service. Returns groups in first-seen order.
func (m *Memory) AllGroups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.groupNames))
	copy(out, m.groupNames)
	return out
}

// grantTo compiles node and merges it into the subject's grant set in
// the addressed layer. Compilation happens before any store mutation so
// an invalid pattern leaves state untouched.
func (m *Memory) grantTo(store *scope.Store[grantSet], sc scope.Scope, key, node string) error {
	if err := ValidateNode(node); err != nil {
		return err
	}
	compiled, err := glob.Compile(node, '.')
	if err != nil {
		return oops.In("perms").
			Code("INVALID_ARGUMENT").
			With("node", node).
			Wrap(err)
	}
	store.Update(sc, key, func(cur grantSet, ok bool) (grantSet, bool) {
		if !ok {
			cur = make(grantSet, 1)
		} else {
			cur = cur.clone()
		}
		cur[node] = compiled
		return cur, true
	})
	return nil
}

// revokeFrom removes node from the subject's grant set in the addressed
// layer only. Draining a named-layer set removes the record so overlay
// fallback to the global layer resumes.
func (m *Memory) revokeFrom(store *scope.Store[grantSet], sc scope.Scope, key, node string) error {
	if err := ValidateNode(node); err != nil {
		return err
	}
	store.Update(sc, key, func(cur grantSet, ok bool) (grantSet, bool) {
		if !ok {
			return nil, false
		}
		cur = cur.clone()
		delete(cur, node)
		return cur, len(cur) > 0
	})
	return nil
}

func (m *Memory) rememberGroup(group string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groupSeen[group]; ok {
		return
	}
	m.groupSeen[group] = struct{}{}
	m.groupNames = append(m.groupNames, group)
}
