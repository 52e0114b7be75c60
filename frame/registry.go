// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/registry.go
// Summary: The process-wide frame registry, selection state and candidate
// frame searches.
// Usage: One Engine per process; the registry is the sole authority for
// "is this frame still live". All operations run on the editor's single
// logical thread of control.

package frame

import (
	"log"
)

// IconifyChildPolicy decides what iconifying a child frame does. There is
// no true icon state for child frames.
type IconifyChildPolicy int

const (
	IconifyChildNop IconifyChildPolicy = iota
	IconifyChildRoot
	IconifyChildInvisible
)

// InhibitImplied is the policy controlling whether implied resizes (mode
// ResizeImplied) may reach the backend.
type InhibitImplied int

const (
	// ImpliedAllowed lets implied resizes notify the backend.
	ImpliedAllowed InhibitImplied = iota
	// ImpliedInhibited keeps implied resizes internal once a frame has
	// received its initial size.
	ImpliedInhibited
	// ImpliedForce keeps implied resizes internal unconditionally.
	ImpliedForce
)

// Policies are the tunables the engine consults. The config package
// produces one of these from the on-disk store.
type Policies struct {
	InhibitImplied InhibitImplied
	IconifyChild   IconifyChildPolicy
	HistoryDepth   int
}

// DefaultPolicies mirror the original defaults: implied resizes inhibited
// after creation, child frames iconify their root frame.
func DefaultPolicies() Policies {
	return Policies{
		InhibitImplied: ImpliedInhibited,
		IconifyChild:   IconifyChildRoot,
		HistoryDepth:   100,
	}
}

// Recorder receives size-change records for persistence, in addition to
// the in-memory rolling history. The sizelog package implements it.
type Recorder interface {
	RecordSizeChange(rec SizeChange)
}

// Engine owns the frame registry and all mutating operations on it.
type Engine struct {
	frames   []*Frame
	selected *Frame

	// lastNonMini tracks the last selected frame that is not
	// minibuffer-only; used when roles need a replacement.
	lastNonMini *Frame

	tree     WindowTree
	policies Policies
	logger   *log.Logger
	history  *SizeHistory
	recorder Recorder

	// bufferLive filters buffer-list parameter writes; nil keeps everything.
	bufferLive func(any) bool

	beforeDelete []func(*Frame)
	afterDelete  []func(*Frame)

	nameCounter int
}

// NewEngine creates an engine with an empty registry and no selection.
// tree may be nil, in which case a NopWindowTree is used.
func NewEngine(tree WindowTree) *Engine {
	if tree == nil {
		tree = NopWindowTree{}
	}
	p := DefaultPolicies()
	return &Engine{
		tree:     tree,
		policies: p,
		logger:   log.Default(),
		history:  newSizeHistory(p.HistoryDepth),
	}
}

// SetLogger replaces the engine's logger. A nil logger restores the
// default one.
func (e *Engine) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	e.logger = l
}

// SetPolicies installs new policy values. The history ring is resized
// lazily on the next append.
func (e *Engine) SetPolicies(p Policies) {
	e.policies = p
	e.history.setDepth(p.HistoryDepth)
}

// Policies returns the current policy values.
func (e *Engine) Policies() Policies { return e.policies }

// SetRecorder installs a persistence sink for size-change records.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// SetBufferLivePredicate installs the host's buffer liveness check used
// to filter buffer-list parameter writes.
func (e *Engine) SetBufferLivePredicate(pred func(any) bool) { e.bufferLive = pred }

// OnBeforeDelete subscribes a best-effort pre-deletion hook. Hook errors
// and panics are non-fatal.
func (e *Engine) OnBeforeDelete(fn func(*Frame)) {
	e.beforeDelete = append(e.beforeDelete, fn)
}

// OnAfterDelete subscribes a best-effort post-deletion hook.
func (e *Engine) OnAfterDelete(fn func(*Frame)) {
	e.afterDelete = append(e.afterDelete, fn)
}

// Frames returns a snapshot of all registered frames in registration
// order. The snapshot stays valid while callers delete frames from it.
func (e *Engine) Frames() []*Frame {
	return append([]*Frame(nil), e.frames...)
}

// LiveFrames returns a snapshot of the registry filtered to live frames.
func (e *Engine) LiveFrames() []*Frame {
	out := make([]*Frame, 0, len(e.frames))
	for _, f := range e.frames {
		if f.Live() {
			out = append(out, f)
		}
	}
	return out
}

// FrameCount returns the number of registered frames.
func (e *Engine) FrameCount() int { return len(e.frames) }

// SelectedFrame returns the currently selected frame, nil before the
// first frame is created.
func (e *Engine) SelectedFrame() *Frame { return e.selected }

// History returns a copy of the rolling size-change history for tooling.
func (e *Engine) History() []SizeChange { return e.history.Snapshot() }

// Children returns the frames whose parent is f, in registration order.
// The child list is derived, never maintained.
func (e *Engine) Children(f *Frame) []*Frame {
	var out []*Frame
	for _, c := range e.frames {
		if c.parent == f && c.Live() {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine) register(f *Frame) {
	e.frames = append(e.frames, f)
}

func (e *Engine) unregister(f *Frame) {
	for i, g := range e.frames {
		if g == f {
			e.frames = append(e.frames[:i], e.frames[i+1:]...)
			return
		}
	}
}

// CandidateFilter restricts candidate frame searches.
type CandidateFilter struct {
	// Visible restricts candidates to visible frames.
	Visible bool
	// VisibleOrIconified restricts candidates to visible or iconified ones.
	VisibleOrIconified bool
	// Window restricts candidates to the window's own frame and frames
	// borrowing it as their minibuffer.
	Window *Window
	// Any accepts every candidate, including minibuffer-only frames.
	Any bool
}

// candidate reports whether c can serve as an "other than f" frame under
// the filter. Candidates must share f's terminal when f lives on a
// character terminal.
func (e *Engine) candidate(c, f *Frame, filter CandidateFilter) bool {
	if c == nil || !c.Live() || c == f || c.tooltip {
		return false
	}
	if f.Text() || c.Text() {
		if c.term != f.term {
			return false
		}
	}
	if v, ok := e.Get(c, ParamNoOtherFrame); ok && v != nil && v != false {
		return false
	}
	switch {
	case filter.Window != nil:
		w := filter.Window
		return c.miniWindow == w || w.frame == c || (c.focusTarget != nil && w.frame == c.focusTarget)
	case filter.Visible:
		return c.visibility == Visible
	case filter.VisibleOrIconified:
		return c.visibility == Visible || c.visibility == Iconified
	case filter.Any:
		return true
	default:
		return !c.miniOnly
	}
}

// Next returns the next acceptable frame in the registry after f, or f
// itself when no other candidate exists.
func (e *Engine) Next(f *Frame, filter CandidateFilter) *Frame {
	var first *Frame
	passed := false
	for _, c := range e.frames {
		if c == f {
			passed = true
			continue
		}
		if !e.candidate(c, f, filter) {
			continue
		}
		if passed {
			return c
		}
		if first == nil {
			first = c
		}
	}
	if first != nil {
		return first
	}
	return f
}

// Prev returns the previous acceptable frame in the registry before f,
// or f itself when no other candidate exists.
func (e *Engine) Prev(f *Frame, filter CandidateFilter) *Frame {
	var prev *Frame
	for _, c := range e.frames {
		if c == f && prev != nil {
			return prev
		}
		if e.candidate(c, f, filter) {
			prev = c
		}
	}
	if prev != nil {
		return prev
	}
	return f
}

// otherFrames reports whether another frame exists that keeps f's
// deletion (or invisibility, when invisible is set) safe. At least one
// visible or iconified, non-child, non-tooltip frame must remain.
func (e *Engine) otherFrames(f *Frame, invisible, force bool) bool {
	for _, f1 := range e.frames {
		if f1 == f || !f1.Live() || f1.tooltip || f1.parent != nil {
			continue
		}
		if !invisible {
			// Frames scheduled to die before another frame don't count for
			// deletions.
			if v, ok := e.Get(f1, ParamDeleteBefore); ok && v != nil {
				continue
			}
		}
		if f1.visibility == Visible || f1.visibility == Iconified {
			return true
		}
		if !invisible && (force || (f1.Graphical() && !f.Graphical())) {
			return true
		}
	}
	return false
}
