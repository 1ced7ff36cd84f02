// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package chat_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tollgate/tollgate/internal/chat"
	"github.com/tollgate/tollgate/internal/identity"
	"github.com/tollgate/tollgate/internal/perms"
	"github.com/tollgate/tollgate/internal/scope"
	"github.com/tollgate/tollgate/pkg/errutil"
)

func newChatFixture(t *testing.T) (*chat.Memory, *perms.Memory, ulid.ULID) {
	t.Helper()
	reg := identity.NewStatic()
	attach := perms.NewAttachmentStore()
	p := perms.NewMemory("memory", reg, attach, nil)
	c := chat.NewMemory("memory", p)
	actor := ulid.Make()
	return c, p, actor
}

func TestMemory_Name(t *testing.T) {
	c, _, _ := newChatFixture(t)
	assert.Equal(t, "memory", c.Name())
}

func TestMemory_PrefixFallback(t *testing.T) {
	c, _, actor := newChatFixture(t)
	mines := scope.Named("mines")

	assert.Empty(t, c.PlayerPrefix(mines, actor))

	require.NoError(t, c.SetPlayerPrefix(scope.Global, actor, "[G]"))
	assert.Equal(t, "[G]", c.PlayerPrefix(mines, actor),
		"named scope falls back to global when unset")

	require.NoError(t, c.SetPlayerPrefix(mines, actor, "[M]"))
	assert.Equal(t, "[M]", c.PlayerPrefix(mines, actor))
	assert.Equal(t, "[G]", c.PlayerPrefix(scope.Global, actor),
		"named write must not leak into global")
	assert.Equal(t, "[G]", c.PlayerPrefix(scope.Named("nether"), actor),
		"sibling scope still sees the global value")
}

func TestMemory_SuffixIndependentOfPrefix(t *testing.T) {
	c, _, actor := newChatFixture(t)

	require.NoError(t, c.SetPlayerPrefix(scope.Global, actor, "[pre]"))
	assert.Empty(t, c.PlayerSuffix(scope.Global, actor))

	require.NoError(t, c.SetPlayerSuffix(scope.Global, actor, " the Bold"))
	assert.Equal(t, " the Bold", c.PlayerSuffix(scope.Global, actor))
	assert.Equal(t, "[pre]", c.PlayerPrefix(scope.Global, actor))
}

func TestMemory_GroupPrefixSuffix(t *testing.T) {
	c, _, _ := newChatFixture(t)

	require.NoError(t, c.SetGroupPrefix(scope.Global, "mods", "[MOD] "))
	require.NoError(t, c.SetGroupSuffix(scope.Global, "mods", "*"))
	assert.Equal(t, "[MOD] ", c.GroupPrefix(scope.Global, "mods"))
	assert.Equal(t, "*", c.GroupSuffix(scope.Global, "mods"))

	err := c.SetGroupPrefix(scope.Global, "", "[?]")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}

func TestMemory_GroupAndPlayerKeysDisjoint(t *testing.T) {
	c, _, actor := newChatFixture(t)

	require.NoError(t, c.SetGroupPrefix(scope.Global, "mods", "[MOD]"))
	assert.Empty(t, c.PlayerPrefix(scope.Global, actor),
		"group prefix must not shadow a player prefix")
}

func TestMemory_TypedInfoNodes(t *testing.T) {
	c, _, actor := newChatFixture(t)

	assert.Equal(t, 7, c.PlayerInfoInt(scope.Global, actor, "homes.max", 7))
	assert.InDelta(t, 1.5, c.PlayerInfoFloat(scope.Global, actor, "tax.rate", 1.5), 1e-9)
	assert.True(t, c.PlayerInfoBool(scope.Global, actor, "chat.muted", true))
	assert.Equal(t, "en", c.PlayerInfoString(scope.Global, actor, "locale", "en"))

	require.NoError(t, c.SetPlayerInfoInt(scope.Global, actor, "homes.max", 3))
	require.NoError(t, c.SetPlayerInfoFloat(scope.Global, actor, "tax.rate", 0.05))
	require.NoError(t, c.SetPlayerInfoBool(scope.Global, actor, "chat.muted", false))
	require.NoError(t, c.SetPlayerInfoString(scope.Global, actor, "locale", "de"))

	assert.Equal(t, 3, c.PlayerInfoInt(scope.Global, actor, "homes.max", 7))
	assert.InDelta(t, 0.05, c.PlayerInfoFloat(scope.Global, actor, "tax.rate", 1.5), 1e-9)
	assert.False(t, c.PlayerInfoBool(scope.Global, actor, "chat.muted", true))
	assert.Equal(t, "de", c.PlayerInfoString(scope.Global, actor, "locale", "en"))
}

func TestMemory_TypedNamespacesIndependent(t *testing.T) {
	c, _, actor := newChatFixture(t)

	require.NoError(t, c.SetPlayerInfoInt(scope.Global, actor, "level", 9))
	assert.InDelta(t, -1.0, c.PlayerInfoFloat(scope.Global, actor, "level", -1.0), 1e-9,
		"an int node must not satisfy a float read of the same name")
	assert.Equal(t, "none", c.PlayerInfoString(scope.Global, actor, "level", "none"))
}

func TestMemory_InfoNodeScopeFallback(t *testing.T) {
	c, _, _ := newChatFixture(t)
	mines := scope.Named("mines")

	require.NoError(t, c.SetGroupInfoInt(scope.Global, "mods", "claims.max", 10))
	assert.Equal(t, 10, c.GroupInfoInt(mines, "mods", "claims.max", 0))

	require.NoError(t, c.SetGroupInfoInt(mines, "mods", "claims.max", 2))
	assert.Equal(t, 2, c.GroupInfoInt(mines, "mods", "claims.max", 0))
	assert.Equal(t, 10, c.GroupInfoInt(scope.Global, "mods", "claims.max", 0))
}

func TestMemory_SetInfoRejectsBadNode(t *testing.T) {
	c, _, actor := newChatFixture(t)

	for _, node := range []string{"", "has space", "tab\tnode"} {
		err := c.SetPlayerInfoInt(scope.Global, actor, node, 1)
		require.Error(t, err, "node %q", node)
		errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
	}
}

func TestMemory_GroupQueriesDelegate(t *testing.T) {
	c, p, actor := newChatFixture(t)

	require.NoError(t, p.AddToGroup(scope.Global, actor, "builders"))
	require.NoError(t, p.SetPrimaryGroup(scope.Global, actor, "builders"))

	assert.Equal(t, []string{"builders"}, c.Groups(scope.Global, actor))
	primary, ok := c.PrimaryGroup(scope.Global, actor)
	require.True(t, ok)
	assert.Equal(t, "builders", primary)
}
