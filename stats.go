// Copyright (c) 2026 The tl2stm authors.
// SPDX-License-Identifier: MIT
package tl2

import "sync/atomic"

// Stats holds atomic observability counters shared by the transactions run
// against one (or, via WithStats, several) STM instances. Purely
// observational: nothing here participates in the commit protocol or its
// invariants.
type Stats struct {
	commits   atomic.Uint64
	retries   atomic.Uint64
	aborts    atomic.Uint64
	conflicts atomic.Uint64
}

// Snapshot is a point-in-time, non-atomic copy of Stats safe to pass
// around or print.
type Snapshot struct {
	Commits   uint64
	Retries   uint64
	Aborts    uint64
	Conflicts uint64
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		Commits:   s.commits.Load(),
		Retries:   s.retries.Load(),
		Aborts:    s.aborts.Load(),
		Conflicts: s.conflicts.Load(),
	}
}

func (s *Stats) recordCommit()   { s.commits.Add(1) }
func (s *Stats) recordRetry()    { s.retries.Add(1) }
func (s *Stats) recordAbort()    { s.aborts.Add(1) }
func (s *Stats) recordConflict() { s.conflicts.Add(1) }
