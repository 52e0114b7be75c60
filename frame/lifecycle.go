// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/lifecycle.go
// Summary: Frame constructors and the cascading delete with sole-frame
// and surrogate-minibuffer protections.
// Usage: Deletion hooks may themselves delete frames; every step re-checks
// liveness instead of assuming a single-pass traversal is safe.

package frame

import "fmt"

// DeleteMode selects how forceful a deletion is.
type DeleteMode int

const (
	// DeleteSafe honors all protections.
	DeleteSafe DeleteMode = iota
	// DeleteForce overrides the sole-frame protection.
	DeleteForce
	// DeleteQuiet deletes unconditionally and defers hooks; used when the
	// backend itself is going away.
	DeleteQuiet
)

func defaultFrameName(n int) string {
	return fmt.Sprintf("F%d", n)
}

// FrameOptions tune frame creation.
type FrameOptions struct {
	Name string
	// Parent embeds the new frame in another frame's surface.
	Parent *Frame
	// Minibuffer selects the minibuffer policy. Borrowing is requested by
	// setting BorrowFrom instead.
	Minibuffer MinibufferSpec
	// BorrowFrom lends its minibuffer window to the new frame. When nil and
	// Minibuffer is MinibufferNone, the terminal's default minibuffer frame
	// is consulted.
	BorrowFrom *Frame
	Tooltip    bool

	// Invisible leaves the new frame unmapped; by default frames are
	// created visible.
	Invisible bool

	// Cols/Lines give the initial text size; zero means 80x25.
	Cols, Lines int
}

// NewFrame creates a frame on t with its own minibuffer window and
// registers it. The frame is created at a placeholder size; callers pass
// the real initial size through NegotiateSize with ResizeForce.
func (e *Engine) NewFrame(t *Terminal, opts FrameOptions) (*Frame, error) {
	opts.Minibuffer = MinibufferOwned
	opts.BorrowFrom = nil
	return e.newFrame(t, opts)
}

// NewFrameWithoutMinibuffer creates a frame borrowing its minibuffer
// window from lender (or the terminal's default minibuffer frame).
func (e *Engine) NewFrameWithoutMinibuffer(t *Terminal, lender *Frame, opts FrameOptions) (*Frame, error) {
	opts.Minibuffer = MinibufferNone
	opts.BorrowFrom = lender
	return e.newFrame(t, opts)
}

// NewMinibufferOnlyFrame creates a frame whose root window is its
// minibuffer window.
func (e *Engine) NewMinibufferOnlyFrame(t *Terminal, opts FrameOptions) (*Frame, error) {
	opts.Minibuffer = MinibufferOnly
	opts.BorrowFrom = nil
	return e.newFrame(t, opts)
}

func (e *Engine) newFrame(t *Terminal, opts FrameOptions) (*Frame, error) {
	if t == nil {
		return nil, fmt.Errorf("frame: terminal is required")
	}
	if opts.Parent != nil {
		if !opts.Parent.Live() {
			return nil, ErrNotLive
		}
		if opts.Parent.term != t {
			return nil, ErrInvalidParameter
		}
	}

	f := &Frame{
		id:      newFrameID(),
		engine:  e,
		term:    t,
		state:   StateUnrealized,
		pendW:   -1,
		pendH:   -1,
		tooltip: opts.Tooltip,
	}

	if opts.Name != "" {
		f.name = opts.Name
		f.explicitName = true
	} else {
		e.nameCounter++
		f.name = defaultFrameName(e.nameCounter)
	}

	// The parent link is established before the minibuffer setup so the
	// shared-root validation below sees the frame's real root.
	f.parent = opts.Parent
	if opts.Parent != nil {
		f.zOrder = e.nextZOrder(opts.Parent)
	}

	switch opts.Minibuffer {
	case MinibufferOnly:
		f.miniOnly = true
		f.ownsMini = true
		// Invariant: the root window of a minibuffer-only frame is its
		// minibuffer window.
		f.miniWindow = newWindow(f, true)
		f.rootWindow = f.miniWindow
	case MinibufferOwned:
		f.rootWindow = newWindow(f, false)
		f.miniWindow = newWindow(f, true)
		f.ownsMini = true
	default:
		f.rootWindow = newWindow(f, false)
		lender := opts.BorrowFrom
		if lender == nil {
			lender = t.defaultMinibufferFrame
		}
		if lender != nil {
			if !lender.Live() || lender.miniWindow == nil {
				return nil, ErrInvalidParameter
			}
			if f.Text() && e.RootOf(lender.miniWindow.frame) != e.RootOf(f) {
				// A frame and its surrogate minibuffer frame must share roots;
				// the same rule the parameter store enforces on later writes.
				return nil, ErrInvalidParameter
			}
			f.miniWindow = lender.miniWindow
		}
	}
	f.selectedWindow = f.rootWindow

	cols, lines := opts.Cols, opts.Lines
	if cols <= 0 {
		cols = 80
	}
	if lines <= 0 {
		lines = 25
	}

	t.retain()
	e.register(f)
	f.state = StateLive

	f.storeParam(ParamName, f.name)
	miniVal, _ := e.Get(f, ParamMinibuffer)
	f.storeParam(ParamMinibuffer, miniVal)
	if opts.Parent != nil {
		f.storeParam(ParamParentFrame, opts.Parent)
	} else {
		f.storeParam(ParamParentFrame, nil)
	}

	// Place the frame at its placeholder size internally; the backend has
	// not been told about the frame yet.
	e.NegotiateSize(f, cols*f.unitW(), lines*f.unitH(), ResizeInternal, false, ParamName)
	f.canResize = true

	// Frames start visible; the backend maps the surface when it realizes
	// the frame. On character terminals this does not promote the frame to
	// the top of the screen.
	if !opts.Invisible && !opts.Tooltip {
		f.visibility = Visible
	}

	if t.kind == Text && f.parent == nil && t.topFrame == nil {
		t.topFrame = f
		t.Cols, t.Lines = f.Cols, f.Lines
	}
	if f.HasOwnMinibuffer() && t.defaultMinibufferFrame == nil && !f.tooltip {
		t.defaultMinibufferFrame = f
	}
	if e.selected == nil && !f.tooltip {
		e.selected = f
		if !f.miniOnly {
			e.lastNonMini = f
		}
	}

	e.logger.Printf("frame: created %s kind=%v parent=%v size=%dx%d", f, t.kind, opts.Parent, f.Cols, f.Lines)
	return f, nil
}

func (e *Engine) nextZOrder(parent *Frame) int {
	z := 0
	for _, c := range e.frames {
		if c.parent == parent && c.zOrder >= z {
			z = c.zOrder + 1
		}
	}
	return z
}

// Delete destroys f. Without force it fails with ErrSoleFrameProtected
// when no other visible or iconified candidate remains, and with
// ErrSurrogateMinibufferProtected when another live frame still borrows
// f's minibuffer window. Deleting an already-dead frame is a no-op.
func (e *Engine) Delete(f *Frame, force bool) error {
	mode := DeleteSafe
	if force {
		mode = DeleteForce
	}
	return e.DeleteWithMode(f, mode)
}

// DeleteWithMode is Delete with an explicit mode; DeleteQuiet is
// reserved for backend teardown paths.
func (e *Engine) DeleteWithMode(f *Frame, mode DeleteMode) error {
	return e.deleteFrame(f, mode)
}

func (e *Engine) deleteFrame(f *Frame, mode DeleteMode) error {
	if f == nil || f.state == StateDead || f.state == StateDying {
		return nil
	}
	if mode != DeleteQuiet && !e.otherFrames(f, false, mode == DeleteForce) {
		return ErrSoleFrameProtected
	}

	if f.Text() && mode == DeleteSafe {
		// Refuse to delete a subtree that still provides the minibuffer for
		// a frame outside of it.
		for _, f1 := range e.frames {
			if !f1.Live() || f1.miniWindow == nil {
				continue
			}
			if e.Subsumes(f, f1.miniWindow.frame) && !e.Subsumes(f, f1) {
				return ErrSurrogateMinibufferProtected
			}
		}
	}

	// Softly delete children and delete-before dependents.
	var minibufferChild *Frame
	isRoot := f.parent == nil
	for _, f1 := range e.Frames() {
		if f1 == f || f1.tooltip || !f1.Live() {
			continue
		}
		if f1.parent == f {
			if f1.HasOwnMinibuffer() && !f.HasOwnMinibuffer() && f.miniWindow == f1.miniWindow {
				// The child owns the minibuffer this frame borrows: unparent it
				// to top level instead of deleting it. The parent link is cut
				// directly; the parameter validation would reject it while this
				// frame still borrows the window.
				f1.parent = nil
				f1.zOrder = 0
				f1.storeParam(ParamParentFrame, nil)
				if f1.Text() {
					e.RootOf(f1).garbaged = true
				}
				minibufferChild = f1
			} else if err := e.deleteFrame(f1, DeleteSafe); err != nil {
				return err
			}
		} else if isRoot {
			// delete-before is processed for root frames only, avoiding
			// infinite chains of mixed dependencies.
			if v, ok := e.Get(f1, ParamDeleteBefore); ok {
				if target, _ := v.(*Frame); target == f {
					if err := e.deleteFrame(f1, DeleteSafe); err != nil {
						return err
					}
				}
			}
		}
	}

	// Surrogate minibuffer protection for the frame's own minibuffer.
	if f.HasOwnMinibuffer() {
		for _, f1 := range e.Frames() {
			if f1 == f || !f1.Live() {
				continue
			}
			if f1.miniWindow != nil && f1.miniWindow.frame == f {
				if mode == DeleteQuiet {
					if err := e.deleteFrame(f1, DeleteQuiet); err != nil {
						return err
					}
				} else {
					return ErrSurrogateMinibufferProtected
				}
			}
		}
	}

	if !f.tooltip && mode != DeleteQuiet {
		e.runDeleteHooks(e.beforeDelete, f)
	}

	// The hooks may have deleted any frame, including this one.
	if !f.Live() {
		return nil
	}
	if mode != DeleteQuiet && !e.otherFrames(f, false, mode == DeleteForce) {
		return ErrSoleFrameProtected
	}

	// Committed from here on.
	f.state = StateDying

	if e.selected == f {
		e.reselectAfterDelete(f)
	}
	if e.selected != nil && e.selected != f {
		e.tree.MoveMinibuffers(f, e.selected, true)
	}

	// Drop focus redirections pointing at the dying frame.
	for _, f1 := range e.frames {
		if f1.focusTarget == f {
			f1.focusTarget = nil
		}
	}

	e.tree.DeleteAllWindows(f)
	f.rootWindow = nil
	f.miniWindow = nil
	f.selectedWindow = nil
	f.bufferList = nil
	f.buriedBufferList = nil
	f.visibility = Invisible

	e.unregister(f)

	term := f.term
	if term.hooks.DeleteFrame != nil {
		term.hooks.DeleteFrame(f)
	}
	f.term = nil
	f.state = StateDead

	term.release(mode == DeleteQuiet)

	e.replaceRoles(f, term)

	if !f.tooltip && mode != DeleteQuiet {
		e.runDeleteHooks(e.afterDelete, f)
	}

	if minibufferChild != nil && minibufferChild.Live() {
		e.resolveMinibufferChild(minibufferChild, mode)
	}

	e.logger.Printf("frame: deleted %s mode=%d remaining=%d", f, mode, len(e.frames))
	return nil
}

// reselectAfterDelete moves the selection away from a dying frame.
func (e *Engine) reselectAfterDelete(f *Frame) {
	if f.Text() && f.parent != nil {
		e.switchTo(e.mruRootedFrame(f), false, true)
		return
	}
	// Prefer a visible frame on the same terminal; do not use Next here,
	// it may loop forever during teardown.
	var next *Frame
	for _, f1 := range e.frames {
		if f1 != f && f1.Live() && !f1.tooltip && f1.term == f.term && f1.visibility == Visible {
			next = f1
			break
		}
	}
	if next == nil {
		for _, f1 := range e.frames {
			if f1 != f && f1.Live() && !f1.tooltip {
				if f1.Text() && f1.term.topFrame != nil && f1.term.topFrame != f {
					next = f1.term.topFrame
				} else {
					next = f1
				}
				break
			}
		}
	}
	if next != nil {
		e.switchTo(next, false, true)
	} else {
		e.selected = nil
	}
}

// replaceRoles finds substitutes for process-wide roles the dead frame
// held, or clears them when no candidate remains.
func (e *Engine) replaceRoles(f *Frame, term *Terminal) {
	if e.lastNonMini == f {
		e.lastNonMini = nil
		for _, f1 := range e.frames {
			if f1.Live() && !f1.miniOnly {
				e.lastNonMini = f1
				break
			}
		}
	}

	if term.defaultMinibufferFrame == f {
		term.defaultMinibufferFrame = nil
		// Prefer minibuffer-only frames, but notice any frame owning one.
		var withMini *Frame
		for _, f1 := range e.frames {
			if !f1.Live() || f1.tooltip || f1.term != term {
				continue
			}
			if f1.HasOwnMinibuffer() {
				withMini = f1
				if f1.miniOnly {
					break
				}
			}
		}
		term.defaultMinibufferFrame = withMini
	}

	if term.topFrame == f {
		term.topFrame = nil
		for _, f1 := range e.frames {
			if f1.Live() && f1.term == term && f1.parent == nil && !f1.tooltip {
				term.topFrame = f1
				term.Cols, term.Lines = f1.Cols, f1.Lines
				break
			}
		}
	}
}

// resolveMinibufferChild post-processes a child that was unparented
// because it owned the dying frame's minibuffer: keep it visible while
// other frames still borrow from it, delete it otherwise.
func (e *Engine) resolveMinibufferChild(child *Frame, mode DeleteMode) {
	for _, f2 := range e.frames {
		if f2 == child || f2.tooltip || !f2.Live() {
			continue
		}
		if f2.miniWindow != nil && f2.miniWindow == child.miniWindow {
			if child.visibility == Invisible {
				if err := e.MakeVisible(child); err != nil {
					e.logger.Printf("frame: cannot show minibuffer child %s: %v", child, err)
				}
			}
			return
		}
	}
	if mode == DeleteQuiet || e.otherFrames(child, false, mode == DeleteForce) {
		if err := e.deleteFrame(child, DeleteQuiet); err != nil {
			e.logger.Printf("frame: cannot drop minibuffer child %s: %v", child, err)
		}
	}
}

func (e *Engine) runDeleteHooks(hooks []func(*Frame), f *Frame) {
	for _, fn := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Printf("frame: delete hook panic on %s: %v", f, r)
				}
			}()
			fn(f)
		}()
	}
}
