// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package chat defines the chat metadata service abstraction: display
// prefixes and suffixes attached to players and groups, plus typed info
// nodes (integer, real, boolean, text) keyed per holder and scope.
//
// Chat metadata follows the same scope overlay rule as permissions and
// owns no group state of its own: group enumeration and primary-group
// queries delegate to the permission service.
package chat

import (
	"github.com/oklog/ulid/v2"

	"github.com/tollgate/tollgate/internal/scope"
)

// Service is the chat metadata provider contract.
//
// Getters take a caller-supplied default and never fail; setters return
// a typed error on structural failure. Prefix and suffix content is not
// validated: color codes, empty strings, and whitespace are all legal.
type Service interface {
	// Name identifies the provider.
	Name() string

	PlayerPrefix(sc scope.Scope, actor ulid.ULID) string
	SetPlayerPrefix(sc scope.Scope, actor ulid.ULID, prefix string) error
	PlayerSuffix(sc scope.Scope, actor ulid.ULID) string
	SetPlayerSuffix(sc scope.Scope, actor ulid.ULID, suffix string) error

	GroupPrefix(sc scope.Scope, group string) string
	SetGroupPrefix(sc scope.Scope, group, prefix string) error
	GroupSuffix(sc scope.Scope, group string) string
	SetGroupSuffix(sc scope.Scope, group, suffix string) error

	// Typed info nodes, four independent namespaces. A get whose node
	// is absent (after overlay fallback) returns the caller's default.
	PlayerInfoInt(sc scope.Scope, actor ulid.ULID, node string, def int) int
	SetPlayerInfoInt(sc scope.Scope, actor ulid.ULID, node string, value int) error
	PlayerInfoFloat(sc scope.Scope, actor ulid.ULID, node string, def float64) float64
	SetPlayerInfoFloat(sc scope.Scope, actor ulid.ULID, node string, value float64) error
	PlayerInfoBool(sc scope.Scope, actor ulid.ULID, node string, def bool) bool
	SetPlayerInfoBool(sc scope.Scope, actor ulid.ULID, node string, value bool) error
	PlayerInfoString(sc scope.Scope, actor ulid.ULID, node string, def string) string
	SetPlayerInfoString(sc scope.Scope, actor ulid.ULID, node string, value string) error

	GroupInfoInt(sc scope.Scope, group, node string, def int) int
	SetGroupInfoInt(sc scope.Scope, group, node string, value int) error
	GroupInfoFloat(sc scope.Scope, group, node string, def float64) float64
	SetGroupInfoFloat(sc scope.Scope, group, node string, value float64) error
	GroupInfoBool(sc scope.Scope, group, node string, def bool) bool
	SetGroupInfoBool(sc scope.Scope, group, node string, value bool) error
	GroupInfoString(sc scope.Scope, group, node string, def string) string
	SetGroupInfoString(sc scope.Scope, group, node string, value string) error

	// Group queries, delegated to the permission service.
	Groups(sc scope.Scope, actor ulid.ULID) []string
	PrimaryGroup(sc scope.Scope, actor ulid.ULID) (string, bool)
}
