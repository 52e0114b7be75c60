// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/frame.go
// Summary: Defines the Frame entity, its geometry block and life states.
// Usage: Frames are created and destroyed through the Engine; fields are
// mutated through the parameter store and geometry negotiation only.

package frame

import (
	"crypto/rand"
	"crypto/sha1"
	"fmt"
	"time"
)

// LifeState tracks a frame through its lifecycle.
type LifeState int

const (
	StateUnrealized LifeState = iota
	StateLive
	StateDying
	StateDead
)

// Visibility is the tri-state display status of a frame.
type Visibility int

const (
	Invisible Visibility = iota
	Visible
	Iconified
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case Iconified:
		return "iconified"
	default:
		return "invisible"
	}
}

// Frame is a top-level (or child) display surface. All mutation goes
// through Engine methods; direct field writes from outside the package
// would bypass the invariant checks.
type Frame struct {
	id           [16]byte
	name         string
	explicitName bool

	engine *Engine
	term   *Terminal
	state  LifeState

	// parent is a weak reference: deleting the parent cascades explicitly,
	// children are recomputed by scanning the registry.
	parent *Frame
	zOrder int

	tooltip bool

	rootWindow *Window
	// miniWindow is owned when ownsMini is set, borrowed otherwise.
	miniWindow *Window
	ownsMini   bool
	miniOnly   bool

	// Geometry. Cols/Lines are the text area in character cells, TextW/TextH
	// the text area in pixels, PixelW/PixelH the native (outer) size.
	Cols, Lines    int
	TextW, TextH   int
	PixelW, PixelH int
	TotalCols      int
	TotalLines     int

	InternalBorder            int
	LeftFringe, RightFringe   int
	ScrollBarW, ScrollBarH    int
	MenuBarLines, TabBarLines int

	// LeftPos/TopPos are the logical position; negative values mean
	// "relative to the opposite edge" while the frame is unrealized.
	LeftPos, TopPos int

	// pendW/pendH hold a native size requested from the backend but not yet
	// confirmed; -1 means no request is outstanding.
	pendW, pendH int

	visibility Visibility
	garbaged   bool
	resized    bool

	// canResize is false until the first negotiation has passed the initial
	// size to the backend.
	canResize bool

	selectedWindow *Window
	selectMini     bool
	focusTarget    *Frame

	params []Param

	bufferList       []any
	buriedBufferList []any
}

// Param is one entry of the ordered parameter alist.
type Param struct {
	Key   string
	Value any
}

func newFrameID() [16]byte {
	var id [16]byte
	if _, err := rand.Read(id[:]); err == nil {
		return id
	}
	fingerprint := fmt.Sprintf("frame:%d", time.Now().UnixNano())
	sum := sha1.Sum([]byte(fingerprint))
	copy(id[:], sum[:])
	return id
}

// ID returns the frame's stable identity. It is never reused while any
// other entity may still hold a reference.
func (f *Frame) ID() [16]byte { return f.id }

// Name returns the frame name ("F1", "F2", ... unless explicitly set).
func (f *Frame) Name() string { return f.name }

// Live reports whether the frame is still registered and usable.
func (f *Frame) Live() bool { return f != nil && f.state == StateLive }

// State returns the lifecycle state.
func (f *Frame) State() LifeState { return f.state }

// Terminal returns the backend this frame is bound to, nil once dead.
func (f *Frame) Terminal() *Terminal { return f.term }

// Parent returns the parent frame, nil for root frames.
func (f *Frame) Parent() *Frame { return f.parent }

// ZOrder returns the stacking position among terminal sibling child frames.
func (f *Frame) ZOrder() int { return f.zOrder }

// Tooltip reports whether this is a tooltip frame. Tooltip frames are
// skipped by selection and candidate searches.
func (f *Frame) Tooltip() bool { return f.tooltip }

// RootWindow returns the frame's root window. Every live frame has
// exactly one.
func (f *Frame) RootWindow() *Window { return f.rootWindow }

// MinibufferWindow returns the minibuffer window the frame uses, owned
// or borrowed. Nil for minibufferless frames.
func (f *Frame) MinibufferWindow() *Window { return f.miniWindow }

// OwnsMinibuffer reports whether the minibuffer window belongs to this
// frame rather than being borrowed.
func (f *Frame) OwnsMinibuffer() bool { return f.ownsMini }

// MinibufferOnly reports whether the frame's root window is its
// minibuffer window.
func (f *Frame) MinibufferOnly() bool { return f.miniOnly }

// HasOwnMinibuffer reports whether f owns a minibuffer window (including
// minibuffer-only frames).
func (f *Frame) HasOwnMinibuffer() bool {
	return f.miniWindow != nil && f.ownsMini
}

// SelectedWindow returns the window selected within this frame.
func (f *Frame) SelectedWindow() *Window { return f.selectedWindow }

// FocusTarget returns the frame keystrokes for f are redirected to, nil
// when focus is not redirected.
func (f *Frame) FocusTarget() *Frame { return f.focusTarget }

// Visibility returns the frame's display status.
func (f *Frame) Visibility() Visibility { return f.visibility }

// Garbaged reports whether the frame needs a full repaint.
func (f *Frame) Garbaged() bool { return f.garbaged }

// ClearGarbaged is called by the host once the frame has been repainted.
func (f *Frame) ClearGarbaged() { f.garbaged = false }

// Resized reports whether a size change was applied or requested since
// the flag was last cleared.
func (f *Frame) Resized() bool { return f.resized }

// ClearResized resets the resize marker.
func (f *Frame) ClearResized() { f.resized = false }

// PendingSize returns the native size requested from the backend but not
// yet confirmed. ok is false when no request is outstanding.
func (f *Frame) PendingSize() (w, h int, ok bool) {
	if f.pendW < 0 && f.pendH < 0 {
		return 0, 0, false
	}
	return f.pendW, f.pendH, true
}

// Graphical reports whether the frame lives on a graphical backend.
func (f *Frame) Graphical() bool { return f.term != nil && f.term.kind == Graphical }

// Text reports whether the frame lives on a character terminal.
func (f *Frame) Text() bool { return f.term != nil && f.term.kind == Text }

// unitW is the pixel width of one character cell (1 on text terminals).
func (f *Frame) unitW() int {
	if f.term == nil || f.term.CellW <= 0 {
		return 1
	}
	return f.term.CellW
}

func (f *Frame) unitH() int {
	if f.term == nil || f.term.CellH <= 0 {
		return 1
	}
	return f.term.CellH
}

// marginHeight is the pixel height of the menu and tab bars, which sit
// between the native edge and the inner area.
func (f *Frame) marginHeight() int {
	return (f.MenuBarLines + f.TabBarLines) * f.unitH()
}

// InnerWidth returns the native width minus the internal borders.
func (f *Frame) InnerWidth() int {
	return f.PixelW - 2*f.InternalBorder
}

// InnerHeight returns the native height minus margins and borders.
func (f *Frame) InnerHeight() int {
	return f.PixelH - f.marginHeight() - 2*f.InternalBorder
}

// textToPixelW converts a text-area width to a native width.
func (f *Frame) textToPixelW(textW int) int {
	return textW + f.LeftFringe + f.RightFringe + f.ScrollBarW + 2*f.InternalBorder
}

func (f *Frame) textToPixelH(textH int) int {
	return textH + f.ScrollBarH + f.marginHeight() + 2*f.InternalBorder
}

// pixelToTextW converts a native width back to the text-area width.
func (f *Frame) pixelToTextW(pixelW int) int {
	return pixelW - f.LeftFringe - f.RightFringe - f.ScrollBarW - 2*f.InternalBorder
}

func (f *Frame) pixelToTextH(pixelH int) int {
	return pixelH - f.ScrollBarH - f.marginHeight() - 2*f.InternalBorder
}

func (f *Frame) String() string {
	if f == nil {
		return "<nil frame>"
	}
	return fmt.Sprintf("%s(%x)", f.name, f.id[:4])
}
