// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package perms

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// attachKey identifies the one logical attachment per (actor, provider)
// pair.
type attachKey struct {
	actor    ulid.ULID
	provider string
}

// Attachment is an ephemeral grant set owned jointly by one actor and
// one provider. Grants merge into the existing attachment rather than
// creating duplicates; the attachment survives an empty node set and is
// only torn down when the owning actor's session ends.
//
// All mutations to one attachment are serialized by its own mutex;
// attachments for distinct (actor, provider) pairs are independent.
type Attachment struct {
	mu    sync.Mutex
	nodes map[string]struct{}
}

// grant merges node into the attachment. Idempotent.
func (a *Attachment) grant(node string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes[node] = struct{}{}
}

// revoke removes node in place. Removing an absent node is a no-op, not
// a failure. The attachment itself stays attached even when empty:
// teardown is driven by session end, not by the node set draining.
func (a *Attachment) revoke(node string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.nodes, node)
}

// holds reports whether the attachment grants node.
func (a *Attachment) holds(node string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.nodes[node]
	return ok
}

// Nodes returns a copy of the attachment's node set.
func (a *Attachment) Nodes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	nodes := make([]string, 0, len(a.nodes))
	for n := range a.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// AttachmentStore holds every transient attachment, keyed by
// (actor, provider). It is the permission subsystem's view of the
// host's attachment storage primitive: providers mutate only the
// attachment they own, and the host drives teardown through EndSession.
//
// The store lock guards only the map; per-attachment mutations take the
// attachment's own lock, so pairs proceed concurrently.
type AttachmentStore struct {
	mu          sync.RWMutex
	attachments map[attachKey]*Attachment
}

// NewAttachmentStore creates an empty attachment store.
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{
		attachments: make(map[attachKey]*Attachment),
	}
}

// Grant merges node into the attachment owned by provider for actor,
// creating the attachment on first grant. Calling Grant twice with the
// same node yields one logical attachment holding the node once.
func (s *AttachmentStore) Grant(actor ulid.ULID, provider, node string) {
	s.attachment(actor, provider).grant(node)
}

// Revoke removes node from the attachment owned by provider for actor.
// Reports whether an attachment existed for the pair; the node itself
// being absent is a no-op either way.
func (s *AttachmentStore) Revoke(actor ulid.ULID, provider, node string) bool {
	s.mu.RLock()
	a, ok := s.attachments[attachKey{actor: actor, provider: provider}]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	a.revoke(node)
	return true
}

// Allows reports whether any provider's attachment grants node for the
// actor. Transient grants are exact-match: wildcard expansion belongs
// to persistent grants.
func (s *AttachmentStore) Allows(actor ulid.ULID, node string) bool {
	s.mu.RLock()
	var matches []*Attachment
	for k, a := range s.attachments {
		if k.actor == actor {
			matches = append(matches, a)
		}
	}
	s.mu.RUnlock()

	for _, a := range matches {
		if a.holds(node) {
			return true
		}
	}
	return false
}

// Get returns the attachment for the pair, if one exists.
func (s *AttachmentStore) Get(actor ulid.ULID, provider string) (*Attachment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attachments[attachKey{actor: actor, provider: provider}]
	return a, ok
}

// EndSession tears down every attachment owned for the actor, across
// all providers. Called by the host when the actor's session ends; this
// is the only teardown path.
func (s *AttachmentStore) EndSession(actor ulid.ULID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.attachments {
		if k.actor == actor {
			delete(s.attachments, k)
		}
	}
}

// attachment returns the attachment for the pair, creating it if
// absent.
func (s *AttachmentStore) attachment(actor ulid.ULID, provider string) *Attachment {
	key := attachKey{actor: actor, provider: provider}

	s.mu.RLock()
	a, ok := s.attachments[key]
	s.mu.RUnlock()
	if ok {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attachments[key]; ok {
		return a
	}
	a = &Attachment{nodes: make(map[string]struct{})}
	s.attachments[key] = a
	return a
}
