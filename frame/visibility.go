// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/visibility.go
// Summary: Visibility transitions: show, hide, iconify and the raise and
// lower operations.

package frame

// MakeVisible shows f. On character terminals this promotes f's root
// frame to the top frame.
func (e *Engine) MakeVisible(f *Frame) error {
	if !f.Live() {
		return ErrNotLive
	}
	if f.Text() {
		e.promoteTopFrame(f)
		f.visibility = Visible
		return nil
	}
	if f.visibility != Visible {
		f.visibility = Visible
		f.garbaged = true
		if f.term.hooks.SetVisibility != nil {
			f.term.hooks.SetVisibility(f, true)
		}
	}
	return nil
}

// MakeInvisible hides f. Without force it fails with
// ErrSoleFrameProtected when no other visible or iconified frame would
// remain. Hiding the selected frame moves the selection away first.
func (e *Engine) MakeInvisible(f *Frame, force bool) error {
	if !f.Live() {
		return ErrNotLive
	}
	if !force && !e.otherFrames(f, true, false) {
		return ErrSoleFrameProtected
	}

	if f.Text() && e.Subsumes(f, e.selected) {
		// The selection may not rest on an invisible frame.
		var next *Frame
		if f.parent != nil {
			next = e.mruRootedFrame(f)
		} else {
			next = e.Next(f, CandidateFilter{VisibleOrIconified: true})
		}
		if next != nil && next != f && !e.Subsumes(f, next) {
			e.switchTo(next, true, false)
		}
	}

	if f.visibility != Invisible {
		f.visibility = Invisible
		for _, c := range e.Children(f) {
			c.visibility = Invisible
		}
		if f.term.hooks.SetVisibility != nil {
			f.term.hooks.SetVisibility(f, false)
		}
	}
	return nil
}

// Iconify minimizes f. Child frames have no icon state; the configured
// policy decides whether the root frame is iconified instead, the child
// is hidden, or nothing happens.
func (e *Engine) Iconify(f *Frame) error {
	if !f.Live() {
		return ErrNotLive
	}
	if f.parent != nil {
		switch e.policies.IconifyChild {
		case IconifyChildRoot:
			return e.Iconify(e.RootOf(f))
		case IconifyChildInvisible:
			return e.MakeInvisible(f, false)
		default:
			return nil
		}
	}
	if f.Text() {
		// A character terminal cannot iconify; treat it as invisibility so
		// another frame takes over the screen.
		if err := e.MakeInvisible(f, false); err != nil {
			return err
		}
		f.visibility = Iconified
		return nil
	}
	if f.visibility != Iconified {
		f.visibility = Iconified
		if f.term.hooks.Iconify != nil {
			f.term.hooks.Iconify(f)
		}
	}
	return nil
}

// Raise brings f to the front of its siblings and, on character
// terminals, promotes it to the top frame.
func (e *Engine) Raise(f *Frame) error {
	if !f.Live() {
		return ErrNotLive
	}
	if f.parent != nil {
		f.zOrder = e.nextZOrder(f.parent)
	}
	if f.Text() {
		e.promoteTopFrame(f)
	} else if f.term.hooks.RaiseLower != nil {
		f.term.hooks.RaiseLower(f, true)
	}
	return nil
}

// Lower pushes f behind its siblings.
func (e *Engine) Lower(f *Frame) error {
	if !f.Live() {
		return ErrNotLive
	}
	if f.parent != nil {
		low := 0
		for _, c := range e.frames {
			if c.parent == f.parent && c != f && c.zOrder <= low {
				low = c.zOrder - 1
			}
		}
		f.zOrder = low
	}
	if f.Graphical() && f.term.hooks.RaiseLower != nil {
		f.term.hooks.RaiseLower(f, false)
	}
	return nil
}

// mruRootedFrame finds the most recently used visible frame sharing f's
// root, preferring frames other than f. Falls back to the root itself.
func (e *Engine) mruRootedFrame(f *Frame) *Frame {
	root := e.RootOf(f)
	if e.lastNonMini != nil && e.lastNonMini != f && e.lastNonMini.Live() &&
		e.RootOf(e.lastNonMini) == root && e.lastNonMini.visibility == Visible {
		return e.lastNonMini
	}
	for _, g := range e.frames {
		if g != f && g.Live() && !g.tooltip && !g.miniOnly &&
			e.RootOf(g) == root && g.visibility == Visible {
			return g
		}
	}
	return root
}
