// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/switch.go
// Summary: Frame selection: the switch procedure, focus redirection and
// the character-terminal top-frame promotion.
// Usage: Selection commits the frame and its selected window atomically;
// observers never see one updated without the other.

package frame

// Select makes f the selected frame. Tooltip frames and dead frames are
// rejected.
func (e *Engine) Select(f *Frame) error {
	if !f.Live() {
		return ErrNotLive
	}
	if f.tooltip {
		return ErrInvalidParameter
	}
	e.switchTo(f, true, false)
	return nil
}

// RedirectFocus makes keystrokes arriving at from be delivered to to.
// A nil to cancels the redirection.
func (e *Engine) RedirectFocus(from, to *Frame) error {
	if !from.Live() {
		return ErrNotLive
	}
	if to != nil && !to.Live() {
		return ErrNotLive
	}
	from.focusTarget = to
	return nil
}

// switchTo is the switch procedure proper. track retargets focus
// redirections that pointed at the previously selected frame;
// forDeletion relaxes the minibuffer relocation because the old frame is
// about to die.
func (e *Engine) switchTo(f *Frame, track, forDeletion bool) {
	if f == nil || !f.Live() {
		return
	}
	prev := e.selected
	if prev == f && !forDeletion {
		return
	}

	if track && prev != nil {
		// Focus redirections that followed the old selection follow the new
		// one, so minibuffer-less frames keep working after a switch.
		for _, g := range e.frames {
			if g.Live() && g.focusTarget == prev {
				g.focusTarget = f
			}
		}
	}

	// An active minibuffer displayed on a frame we are leaving gets shrunk
	// back to its minimum height.
	if prev != nil && prev.Live() && prev.miniWindow != nil &&
		prev.miniWindow.frame != f && e.tree.MinibufferActive(prev.miniWindow) {
		e.tree.ShrinkMinibuffer(prev.miniWindow)
	}

	if f.Text() {
		e.promoteTopFrame(f)
	}

	if prev != nil && prev.Live() && prev != f {
		e.tree.MoveMinibuffers(prev, f, forDeletion)
	}

	// Commit frame and window together. A selected minibuffer window with
	// no active session falls back to the most recently used pane.
	w := f.selectedWindow
	if f.selectMini && f.miniWindow != nil && e.tree.MinibufferActive(f.miniWindow) {
		w = f.miniWindow
		f.selectMini = false
	}
	if w != nil && w.mini && !f.miniOnly && !e.tree.MinibufferActive(w) {
		if mru := e.tree.MostRecentlyUsed(f); mru != nil {
			w = mru
		}
	}
	if w == nil {
		w = f.rootWindow
	}
	e.selected = f
	f.selectedWindow = w

	if !f.miniOnly {
		e.lastNonMini = f
	}

	if f.term != nil && f.term.hooks.Focus != nil && !forDeletion {
		f.term.hooks.Focus(f, true)
	}
}

// promoteTopFrame makes f's root frame the one physically shown on its
// character terminal and resyncs the terminal dimensions.
func (e *Engine) promoteTopFrame(f *Frame) {
	t := f.term
	root := e.RootOf(f)
	if t.topFrame == root {
		return
	}
	old := t.topFrame
	t.topFrame = root

	// The root and every ancestor of f on the way up become visible; the
	// whole subtree needs a repaint.
	for g := f; g != nil; g = g.parent {
		g.visibility = Visible
	}
	root.garbaged = true
	if old != nil && old.Live() {
		old.garbaged = true
	}

	// The screen keeps one size; the promoted root adopts it.
	if t.Cols > 0 && t.Lines > 0 && (root.Cols != t.Cols || root.Lines != t.Lines) {
		e.NegotiateSize(root, t.Cols*root.unitW(), t.Lines*root.unitH(), ResizeForce, false, "top-frame")
	}
	t.Cols, t.Lines = root.Cols, root.Lines
}

// SelectMinibufferOnSwitch arranges for the next switch to f to land in
// its minibuffer window if a session is active there.
func (e *Engine) SelectMinibufferOnSwitch(f *Frame) {
	if f.Live() {
		f.selectMini = true
	}
}
