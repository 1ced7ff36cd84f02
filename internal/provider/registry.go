// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package provider

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// Priority orders competing providers for one slot. Highest wins.
type Priority int

// Registration priorities, lowest to highest.
const (
	PriorityLowest  Priority = 0
	PriorityLow     Priority = 1
	PriorityNormal  Priority = 2
	PriorityHigh    Priority = 3
	PriorityHighest Priority = 4
)

// String implements fmt.Stringer.
func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority parses a manifest priority string. Empty means normal.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "":
		return PriorityNormal, nil
	case "lowest":
		return PriorityLowest, nil
	case "low":
		return PriorityLow, nil
	case "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "highest":
		return PriorityHighest, nil
	default:
		return PriorityNormal, fmt.Errorf("priority must be one of lowest, low, normal, high, highest, got %q", s)
	}
}

// Registration ties a manifest to a live service implementation.
type Registration struct {
	Manifest *Manifest
	Priority Priority
	// Service is the provider implementation; callers type-assert it to
	// the interface matching Manifest.Kind.
	Service any
}

// Registry holds the installed providers, one winner per slot.
//
// Registry is safe for concurrent use.
type Registry struct {
	hostAPI *semver.Version
	logger  *slog.Logger

	mu    sync.RWMutex
	slots map[Kind][]*Registration
}

// NewRegistry creates a registry for a host exposing the given API
// version. A nil logger discards.
func NewRegistry(hostAPI string, logger *slog.Logger) (*Registry, error) {
	v, err := semver.NewVersion(hostAPI)
	if err != nil {
		return nil, oops.In("provider").
			Code("INVALID_ARGUMENT").
			With("host_api", hostAPI).
			Wrap(err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{hostAPI: v, logger: logger, slots: make(map[Kind][]*Registration)}, nil
}

// Register installs a provider under its manifest's slot. Registration
// fails if the manifest is invalid, the provider's API range excludes
// the host, or a provider with the same name already fills the slot.
func (r *Registry) Register(m *Manifest, svc any) error {
	if err := m.Validate(); err != nil {
		return oops.In("provider").
			Code("INVALID_ARGUMENT").
			Wrap(err)
	}
	constraint, err := m.APIConstraint()
	if err != nil {
		return oops.In("provider").
			Code("INVALID_ARGUMENT").
			Wrap(err)
	}
	if !constraint.Check(r.hostAPI) {
		return oops.In("provider").
			Code("UNSUPPORTED").
			With("provider", m.Name).
			With("api", m.API).
			With("host_api", r.hostAPI.String()).
			New("provider does not support this host API version")
	}
	priority, err := ParsePriority(m.Priority)
	if err != nil {
		return oops.In("provider").
			Code("INVALID_ARGUMENT").
			Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.slots[m.Kind] {
		if reg.Manifest.Name == m.Name {
			return oops.In("provider").
				Code("INVALID_ARGUMENT").
				With("provider", m.Name).
				With("kind", string(m.Kind)).
				New("provider already registered")
		}
	}
	r.slots[m.Kind] = append(r.slots[m.Kind], &Registration{Manifest: m, Priority: priority, Service: svc})
	r.logger.Info("provider registered",
		"provider", m.Name,
		"kind", string(m.Kind),
		"version", m.Version,
		"priority", priority.String())
	return nil
}

// Unregister removes a named provider from a slot.
func (r *Registry) Unregister(kind Kind, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := r.slots[kind]
	for i, reg := range regs {
		if reg.Manifest.Name == name {
			r.slots[kind] = append(regs[:i], regs[i+1:]...)
			r.logger.Info("provider unregistered", "provider", name, "kind", string(kind))
			return nil
		}
	}
	return oops.In("provider").
		Code("NOT_FOUND").
		With("provider", name).
		With("kind", string(kind)).
		New("provider not registered")
}

// Lookup returns the winning provider for a slot: highest priority,
// earliest registration breaking ties.
func (r *Registry) Lookup(kind Kind) (*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Registration
	for _, reg := range r.slots[kind] {
		if best == nil || reg.Priority > best.Priority {
			best = reg
		}
	}
	if best == nil {
		return nil, oops.In("provider").
			Code("NOT_FOUND").
			With("kind", string(kind)).
			New("no provider registered")
	}
	return best, nil
}

// All returns every registration for a slot, in registration order.
func (r *Registry) All(kind Kind) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Registration, len(r.slots[kind]))
	copy(out, r.slots[kind])
	return out
}
