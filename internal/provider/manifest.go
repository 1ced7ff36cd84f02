// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package provider manages service provider registration: which
// permission, chat, and ledger implementations are installed, and which
// one answers when several compete for the same slot.
package provider

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Kind identifies a service slot a provider can fill.
type Kind string

// Service slots.
const (
	KindPermissions Kind = "permissions"
	KindChat        Kind = "chat"
	KindLedger      Kind = "ledger"
	KindBank        Kind = "bank"
)

// Manifest represents a provider.yaml file.
type Manifest struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Kind     Kind   `yaml:"kind"`
	Priority string `yaml:"priority,omitempty"`
	// API constrains the host API versions this provider accepts, as a
	// semver range like ">= 1.0, < 2".
	API string `yaml:"api,omitempty"`
}

// maxNameLength is the maximum allowed length for provider names.
const maxNameLength = 64

// namePattern validates provider names: must start with a lowercase
// letter, followed by lowercase letters, digits, or hyphens. Cannot end
// with a hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a provider.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", m.Version, err)
	}

	switch m.Kind {
	case KindPermissions, KindChat, KindLedger, KindBank:
	default:
		return fmt.Errorf("kind must be one of permissions, chat, ledger, bank, got %q", m.Kind)
	}

	if m.Priority != "" {
		if _, err := ParsePriority(m.Priority); err != nil {
			return err
		}
	}

	if m.API != "" {
		if _, err := semver.NewConstraint(m.API); err != nil {
			return fmt.Errorf("api %q is not a valid version range: %w", m.API, err)
		}
	}

	return nil
}

// APIConstraint returns the parsed host API range. A manifest without
// one accepts any host.
func (m *Manifest) APIConstraint() (*semver.Constraints, error) {
	if m.API == "" {
		return semver.NewConstraint(">= 0.0.0")
	}
	c, err := semver.NewConstraint(m.API)
	if err != nil {
		return nil, fmt.Errorf("api %q is not a valid version range: %w", m.API, err)
	}
	return c, nil
}
