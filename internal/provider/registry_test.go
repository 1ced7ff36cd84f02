// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tollgate/tollgate/pkg/errutil"
)

func manifest(name string, kind Kind, priority string) *Manifest {
	return &Manifest{Name: name, Version: "1.0.0", Kind: kind, Priority: priority}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg, err := NewRegistry("1.4.0", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Register(manifest("memory", KindLedger, ""), "memory-impl"))

	got, err := reg.Lookup(KindLedger)
	require.NoError(t, err)
	assert.Equal(t, "memory", got.Manifest.Name)
	assert.Equal(t, "memory-impl", got.Service)
}

func TestRegistry_HighestPriorityWins(t *testing.T) {
	reg, err := NewRegistry("1.0.0", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Register(manifest("bundled", KindPermissions, "lowest"), "bundled"))
	require.NoError(t, reg.Register(manifest("fancy", KindPermissions, "high"), "fancy"))
	require.NoError(t, reg.Register(manifest("middling", KindPermissions, "normal"), "middling"))

	got, err := reg.Lookup(KindPermissions)
	require.NoError(t, err)
	assert.Equal(t, "fancy", got.Manifest.Name)
}

func TestRegistry_TieBreaksByRegistrationOrder(t *testing.T) {
	reg, err := NewRegistry("1.0.0", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Register(manifest("first", KindChat, "normal"), 1))
	require.NoError(t, reg.Register(manifest("second", KindChat, "normal"), 2))

	got, err := reg.Lookup(KindChat)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Manifest.Name)
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg, err := NewRegistry("1.0.0", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Register(manifest("memory", KindLedger, ""), nil))
	err = reg.Register(manifest("memory", KindLedger, ""), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}

func TestRegistry_APIConstraintRejectsHost(t *testing.T) {
	reg, err := NewRegistry("2.0.0", nil)
	require.NoError(t, err)

	m := manifest("legacy", KindLedger, "")
	m.API = ">= 1.0, < 2"
	err = reg.Register(m, nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "UNSUPPORTED")
}

func TestRegistry_APIConstraintAcceptsHost(t *testing.T) {
	reg, err := NewRegistry("1.4.0", nil)
	require.NoError(t, err)

	m := manifest("compatible", KindLedger, "")
	m.API = ">= 1.0, < 2"
	require.NoError(t, reg.Register(m, nil))
}

func TestRegistry_LookupEmptySlot(t *testing.T) {
	reg, err := NewRegistry("1.0.0", nil)
	require.NoError(t, err)

	_, err = reg.Lookup(KindBank)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "NOT_FOUND")
}

func TestRegistry_Unregister(t *testing.T) {
	reg, err := NewRegistry("1.0.0", nil)
	require.NoError(t, err)

	require.NoError(t, reg.Register(manifest("memory", KindLedger, ""), nil))
	require.NoError(t, reg.Unregister(KindLedger, "memory"))

	_, err = reg.Lookup(KindLedger)
	require.Error(t, err)

	err = reg.Unregister(KindLedger, "memory")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "NOT_FOUND")
}

func TestRegistry_BadHostAPI(t *testing.T) {
	_, err := NewRegistry("not-a-version", nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}
