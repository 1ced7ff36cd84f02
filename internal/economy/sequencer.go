// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"sync"
)

// sequencer serializes work per key. Jobs enqueued under the same key
// run one at a time in enqueue order; jobs under distinct keys run
// concurrently. This is what turns caller program order into ledger
// apply order without a global lock.
type sequencer struct {
	mu     sync.Mutex
	lanes  map[string]chan func()
	closed bool
	wg     sync.WaitGroup
}

// laneDepth bounds how many jobs a single key can have queued before
// enqueue blocks the caller. The send holds the sequencer lock, so a
// full lane also stalls other submitters until its drain catches up.
const laneDepth = 128

func newSequencer() *sequencer {
	return &sequencer{lanes: make(map[string]chan func())}
}

// submit enqueues job on key's lane. The first job for a key spawns its
// drain goroutine; later jobs reuse it. submit itself is synchronous,
// so two submits from one goroutine land in the lane in call order.
// The send stays under the lock: close cannot shut a lane between the
// closed check and the send, so an accepted job always runs.
func (s *sequencer) submit(key string, job func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		job()
		return
	}
	lane, ok := s.lanes[key]
	if !ok {
		lane = make(chan func(), laneDepth)
		s.lanes[key] = lane
		s.wg.Add(1)
		go s.drain(lane)
	}
	lane <- job
	s.mu.Unlock()
}

func (s *sequencer) drain(lane chan func()) {
	defer s.wg.Done()
	for job := range lane {
		job()
	}
}

// close stops all lanes after their queued jobs finish. Jobs submitted
// after close run inline on the caller.
func (s *sequencer) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, lane := range s.lanes {
		close(lane)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
