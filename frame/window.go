// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/window.go
// Summary: Minimal window entity and the window-tree collaborator interface.
// Usage: The pane tree inside a frame is managed by the host; this module
// only owns the root and minibuffer windows and talks to the tree through
// the WindowTree interface.

package frame

// Window is a pane inside a frame. This module creates only the root and
// minibuffer windows; splitting and the tree between them belong to the
// host's window-tree implementation.
type Window struct {
	id    [16]byte
	frame *Frame
	mini  bool

	PixelW, PixelH int
}

func newWindow(f *Frame, mini bool) *Window {
	return &Window{id: newFrameID(), frame: f, mini: mini}
}

// ID returns the window identity.
func (w *Window) ID() [16]byte { return w.id }

// Frame returns the frame owning this window. For a borrowed minibuffer
// window this is the lending frame, not the borrower.
func (w *Window) Frame() *Frame { return w.frame }

// Mini reports whether this is a minibuffer window.
func (w *Window) Mini() bool { return w.mini }

// Live reports whether the owning frame is still live.
func (w *Window) Live() bool { return w != nil && w.frame.Live() }

// WindowTree is the collaborator managing the pane tree inside each frame.
// Implementations must not call back into the Engine while servicing a
// request; the engine's operations are not reentrant with themselves.
type WindowTree interface {
	// MinimumInnerSize returns the minimum inner size, in character cells,
	// needed to host all panes of f along the given axis.
	MinimumInnerSize(f *Frame, horizontal bool) int

	// Repack resizes the pane tree of f to the new inner pixel size along
	// the given axis.
	Repack(f *Frame, newInner int, horizontal bool)

	// DeleteAllWindows tears down the pane tree of f during deletion.
	DeleteAllWindows(f *Frame)

	// MostRecentlyUsed returns the most recently used non-minibuffer window
	// of f, nil when f has none (minibuffer-only frames).
	MostRecentlyUsed(f *Frame) *Window

	// MinibufferActive reports whether an input session is active in w.
	MinibufferActive(w *Window) bool

	// ShrinkMinibuffer temporarily resets w's display height to its minimum.
	ShrinkMinibuffer(w *Window)

	// MoveMinibuffers relocates any active minibuffer sessions from one
	// frame onto another. force is set during deletions.
	MoveMinibuffers(from, to *Frame, force bool)
}

// NopWindowTree is a WindowTree that hosts a single implicit pane per
// frame. It keeps the engine usable without a real tree implementation
// and is the default collaborator in tests and the demo host.
type NopWindowTree struct{}

func (NopWindowTree) MinimumInnerSize(f *Frame, horizontal bool) int { return 1 }

func (NopWindowTree) Repack(f *Frame, newInner int, horizontal bool) {
	if f == nil || f.rootWindow == nil {
		return
	}
	if horizontal {
		f.rootWindow.PixelW = newInner
		if f.miniWindow != nil && f.ownsMini {
			f.miniWindow.PixelW = newInner
		}
	} else {
		mini := 0
		if f.miniWindow != nil && f.ownsMini && !f.miniOnly {
			f.miniWindow.PixelH = f.unitH()
			mini = f.miniWindow.PixelH
		}
		f.rootWindow.PixelH = newInner - mini
	}
}

func (NopWindowTree) DeleteAllWindows(f *Frame) {}

func (NopWindowTree) MostRecentlyUsed(f *Frame) *Window {
	if f == nil || f.miniOnly {
		return nil
	}
	return f.rootWindow
}

func (NopWindowTree) MinibufferActive(w *Window) bool { return false }

func (NopWindowTree) ShrinkMinibuffer(w *Window) {}

func (NopWindowTree) MoveMinibuffers(from, to *Frame, force bool) {}
