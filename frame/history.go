// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/history.go
// Summary: Bounded rolling history of geometry negotiations.
// Usage: Read-only introspection for interactive tooling; optionally
// spilled to the sizelog store through the Recorder interface.

package frame

import (
	"sync"
	"time"
)

// SizeChange is one diagnostic record appended by the geometry
// negotiator. Old/New tuples are text, native and inner sizes in pixels
// plus the text size in cells.
type SizeChange struct {
	FrameID   [16]byte
	FrameName string
	At        time.Time

	Mode      ResizeMode
	Parameter string
	Pretend   bool

	OldTextW, OldTextH     int
	NewTextW, NewTextH     int
	OldCols, OldLines      int
	NewCols, NewLines      int
	OldNativeW, OldNativeH int
	NewNativeW, NewNativeH int
	OldInnerW, OldInnerH   int
	NewInnerW, NewInnerH   int
	MinInnerW, MinInnerH   int

	InhibitHorizontal bool
	InhibitVertical   bool

	// Requested is true when the backend was asked for the size; the
	// record then describes a pending request, not a committed change.
	Requested bool
}

// SizeHistory is a bounded ring of SizeChange records. It has its own
// lock because tooling may dump it while the engine mutates frames.
type SizeHistory struct {
	mu    sync.Mutex
	depth int
	recs  []SizeChange
}

func newSizeHistory(depth int) *SizeHistory {
	if depth <= 0 {
		depth = 100
	}
	return &SizeHistory{depth: depth}
}

func (h *SizeHistory) setDepth(depth int) {
	if depth <= 0 {
		return
	}
	h.mu.Lock()
	h.depth = depth
	if over := len(h.recs) - depth; over > 0 {
		h.recs = append([]SizeChange(nil), h.recs[over:]...)
	}
	h.mu.Unlock()
}

func (h *SizeHistory) append(rec SizeChange) {
	h.mu.Lock()
	h.recs = append(h.recs, rec)
	if over := len(h.recs) - h.depth; over > 0 {
		h.recs = h.recs[over:]
	}
	h.mu.Unlock()
}

// Snapshot returns a copy of the buffered records, oldest first.
func (h *SizeHistory) Snapshot() []SizeChange {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SizeChange(nil), h.recs...)
}
