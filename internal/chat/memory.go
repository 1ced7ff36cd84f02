// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package chat

import (
	"github.com/oklog/ulid/v2"

	"github.com/tollgate/tollgate/internal/perms"
	"github.com/tollgate/tollgate/internal/scope"
)

// Memory is the bundled in-memory chat metadata provider. Prefixes,
// suffixes, and each typed info namespace live in their own scoped
// store; group queries delegate to the permission provider.
//
// Memory is safe for concurrent use.
type Memory struct {
	name  string
	perms perms.Service

	prefixes *scope.Store[string]
	suffixes *scope.Store[string]
	ints     *scope.Store[int]
	floats   *scope.Store[float64]
	bools    *scope.Store[bool]
	strings  *scope.Store[string]
}

var _ Service = (*Memory)(nil)

// NewMemory creates an in-memory chat metadata provider backed by the
// given permission service for group queries.
func NewMemory(name string, permsSvc perms.Service) *Memory {
	return &Memory{
		name:     name,
		perms:    permsSvc,
		prefixes: scope.NewStore[string](),
		suffixes: scope.NewStore[string](),
		ints:     scope.NewStore[int](),
		floats:   scope.NewStore[float64](),
		bools:    scope.NewStore[bool](),
		strings:  scope.NewStore[string](),
	}
}

// Name implements Service.
func (m *Memory) Name() string { return m.name }

// infoKey namespaces a holder's info node within one typed store.
func infoKey(subject, node string) string {
	return subject + "\x1f" + node
}

// PlayerPrefix implements Service.
func (m *Memory) PlayerPrefix(sc scope.Scope, actor ulid.ULID) string {
	v, _ := m.prefixes.Get(sc, perms.ActorKey(actor))
	return v
}

// SetPlayerPrefix implements Service.
func (m *Memory) SetPlayerPrefix(sc scope.Scope, actor ulid.ULID, prefix string) error {
	m.prefixes.Set(sc, perms.ActorKey(actor), prefix)
	return nil
}

// PlayerSuffix implements Service.
func (m *Memory) PlayerSuffix(sc scope.Scope, actor ulid.ULID) string {
	v, _ := m.suffixes.Get(sc, perms.ActorKey(actor))
	return v
}

// SetPlayerSuffix implements Service.
func (m *Memory) SetPlayerSuffix(sc scope.Scope, actor ulid.ULID, suffix string) error {
	m.suffixes.Set(sc, perms.ActorKey(actor), suffix)
	return nil
}

// GroupPrefix implements Service.
func (m *Memory) GroupPrefix(sc scope.Scope, group string) string {
	v, _ := m.prefixes.Get(sc, perms.GroupKey(group))
	return v
}

// SetGroupPrefix implements Service.
func (m *Memory) SetGroupPrefix(sc scope.Scope, group, prefix string) error {
	if err := perms.ValidateGroup(group); err != nil {
		return err
	}
	m.prefixes.Set(sc, perms.GroupKey(group), prefix)
	return nil
}

// GroupSuffix implements Service.
func (m *Memory) GroupSuffix(sc scope.Scope, group string) string {
	v, _ := m.suffixes.Get(sc, perms.GroupKey(group))
	return v
}

// SetGroupSuffix implements Service.
func (m *Memory) SetGroupSuffix(sc scope.Scope, group, suffix string) error {
	if err := perms.ValidateGroup(group); err != nil {
		return err
	}
	m.suffixes.Set(sc, perms.GroupKey(group), suffix)
	return nil
}

// PlayerInfoInt implements Service.
func (m *Memory) PlayerInfoInt(sc scope.Scope, actor ulid.ULID, node string, def int) int {
	return getInfo(m.ints, sc, perms.ActorKey(actor), node, def)
}

// SetPlayerInfoInt implements Service.
func (m *Memory) SetPlayerInfoInt(sc scope.Scope, actor ulid.ULID, node string, value int) error {
	return setInfo(m.ints, sc, perms.ActorKey(actor), node, value)
}

// PlayerInfoFloat implements Service.
func (m *Memory) PlayerInfoFloat(sc scope.Scope, actor ulid.ULID, node string, def float64) float64 {
	return getInfo(m.floats, sc, perms.ActorKey(actor), node, def)
}

// SetPlayerInfoFloat implements Service.
func (m *Memory) SetPlayerInfoFloat(sc scope.Scope, actor ulid.ULID, node string, value float64) error {
	return setInfo(m.floats, sc, perms.ActorKey(actor), node, value)
}

// PlayerInfoBool implements Service.
func (m *Memory) PlayerInfoBool(sc scope.Scope, actor ulid.ULID, node string, def bool) bool {
	return getInfo(m.bools, sc, perms.ActorKey(actor), node, def)
}

// SetPlayerInfoBool implements Service.
func (m *Memory) SetPlayerInfoBool(sc scope.Scope, actor ulid.ULID, node string, value bool) error {
	return setInfo(m.bools, sc, perms.ActorKey(actor), node, value)
}

// PlayerInfoString implements Service.
func (m *Memory) PlayerInfoString(sc scope.Scope, actor ulid.ULID, node string, def string) string {
	return getInfo(m.strings, sc, perms.ActorKey(actor), node, def)
}

// SetPlayerInfoString implements Service.
func (m *Memory) SetPlayerInfoString(sc scope.Scope, actor ulid.ULID, node string, value string) error {
	return setInfo(m.strings, sc, perms.ActorKey(actor), node, value)
}

// GroupInfoInt implements Service.
func (m *Memory) GroupInfoInt(sc scope.Scope, group, node string, def int) int {
	return getInfo(m.ints, sc, perms.GroupKey(group), node, def)
}

// SetGroupInfoInt implements Service.
func (m *Memory) SetGroupInfoInt(sc scope.Scope, group, node string, value int) error {
	return setInfo(m.ints, sc, perms.GroupKey(group), node, value)
}

// GroupInfoFloat implements Service.
func (m *Memory) GroupInfoFloat(sc scope.Scope, group, node string, def float64) float64 {
	return getInfo(m.floats, sc, perms.GroupKey(group), node, def)
}

// SetGroupInfoFloat implements Service.
func (m *Memory) SetGroupInfoFloat(sc scope.Scope, group, node string, value float64) error {
	return setInfo(m.floats, sc, perms.GroupKey(group), node, value)
}

// GroupInfoBool implements Service.
func (m *Memory) GroupInfoBool(sc scope.Scope, group, node string, def bool) bool {
	return getInfo(m.bools, sc, perms.GroupKey(group), node, def)
}

// SetGroupInfoBool implements Service.
func (m *Memory) SetGroupInfoBool(sc scope.Scope, group, node string, value bool) error {
	return setInfo(m.bools, sc, perms.GroupKey(group), node, value)
}

// GroupInfoString implements Service.
func (m *Memory) GroupInfoString(sc scope.Scope, group, node string, def string) string {
	return getInfo(m.strings, sc, perms.GroupKey(group), node, def)
}

// SetGroupInfoString implements Service.
func (m *Memory) SetGroupInfoString(sc scope.Scope, group, node string, value string) error {
	return setInfo(m.strings, sc, perms.GroupKey(group), node, value)
}

// Groups implements Service by delegating to the permission provider.
func (m *Memory) Groups(sc scope.Scope, actor ulid.ULID) []string {
	return m.perms.Groups(sc, actor)
}

// PrimaryGroup implements Service by delegating to the permission
// provider.
func (m *Memory) PrimaryGroup(sc scope.Scope, actor ulid.ULID) (string, bool) {
	return m.perms.PrimaryGroup(sc, actor)
}

func getInfo[T any](store *scope.Store[T], sc scope.Scope, subject, node string, def T) T {
	v, ok := store.Get(sc, infoKey(subject, node))
	if !ok {
		return def
	}
	return v
}

func setInfo[T any](store *scope.Store[T], sc scope.Scope, subject, node string, value T) error {
	if err := perms.ValidateNode(node); err != nil {
		return err
	}
	store.Set(sc, infoKey(subject, node), value)
	return nil
}
