// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/terminal.go
// Summary: Backend terminal binding: hook table, reference counting and
// per-terminal top-frame bookkeeping.
// Usage: One Terminal exists per physical display or terminal device; all
// frames created on that backend share it.

package frame

// TerminalKind distinguishes graphical displays from character terminals.
type TerminalKind int

const (
	Graphical TerminalKind = iota
	Text
)

// Hooks is the backend capability table. Every hook may be nil, in which
// case the corresponding operation is a no-op on this backend.
type Hooks struct {
	// ResizeFrame asks the backend for a new native size. The backend
	// confirms asynchronously through Engine.ConfirmResize.
	ResizeFrame func(f *Frame, w, h int)

	// SetPosition moves the frame's native surface.
	SetPosition func(f *Frame, x, y int)

	// SetVisibility shows or hides the native surface.
	SetVisibility func(f *Frame, visible bool)

	// RaiseLower restacks the native surface.
	RaiseLower func(f *Frame, raise bool)

	// Iconify minimizes the native surface.
	Iconify func(f *Frame)

	// Focus activates or deactivates input focus.
	Focus func(f *Frame, activate bool)

	// FocusFrame returns the frame that currently holds the backend's
	// input focus, nil when unknown.
	FocusFrame func(t *Terminal) *Frame

	// DeleteFrame releases backend resources tied to one frame.
	DeleteFrame func(f *Frame)

	// Teardown releases the backend itself once its last frame is gone.
	Teardown func(t *Terminal)
}

// ParamHandler is invoked when a parameter with a registered backend
// handler is written, after the alist update.
type ParamHandler func(f *Frame, key string, old, new any) error

// Terminal is the backend abstraction shared by all frames on one
// physical display or terminal device. It is reference-counted: the
// backend may be torn down only when its last frame is gone.
type Terminal struct {
	name  string
	kind  TerminalKind
	hooks Hooks

	// CellW/CellH are the pixel dimensions of one character cell. Both are
	// 1 on character terminals.
	CellW, CellH int

	refCount int

	// Cols/Lines mirror the physical screen dimensions as last synced to
	// the top frame (character terminals only).
	Cols, Lines int

	// topFrame is the single frame physically shown on a character
	// terminal. Always a root frame.
	topFrame *Frame

	// defaultMinibufferFrame supplies the minibuffer window for frames
	// created without one on this backend.
	defaultMinibufferFrame *Frame

	handlers map[string]ParamHandler
}

// NewTerminal creates a backend binding. Graphical terminals should pass
// the pixel size of one character cell; character terminals use 1x1.
func NewTerminal(name string, kind TerminalKind, hooks Hooks) *Terminal {
	t := &Terminal{name: name, kind: kind, hooks: hooks, CellW: 1, CellH: 1}
	if kind == Graphical {
		// Reasonable default cell box until the host sets real font metrics.
		t.CellW, t.CellH = 8, 16
	}
	return t
}

// Name returns the device name the terminal was created with.
func (t *Terminal) Name() string { return t.name }

// Kind returns whether this is a graphical display or a character terminal.
func (t *Terminal) Kind() TerminalKind { return t.kind }

// RefCount returns the number of live frames bound to this terminal.
func (t *Terminal) RefCount() int { return t.refCount }

// TopFrame returns the frame currently shown on a character terminal,
// nil on graphical backends or before the first frame exists.
func (t *Terminal) TopFrame() *Frame { return t.topFrame }

// DefaultMinibufferFrame returns the frame whose minibuffer window is
// lent to minibufferless frames on this backend.
func (t *Terminal) DefaultMinibufferFrame() *Frame { return t.defaultMinibufferFrame }

// SetDefaultMinibufferFrame records the default minibuffer lender.
func (t *Terminal) SetDefaultMinibufferFrame(f *Frame) { t.defaultMinibufferFrame = f }

// RegisterParamHandler installs a backend side effect for one parameter
// key. Handlers are looked up once per Set.
func (t *Terminal) RegisterParamHandler(key string, h ParamHandler) {
	if t.handlers == nil {
		t.handlers = make(map[string]ParamHandler)
	}
	t.handlers[key] = h
}

func (t *Terminal) handler(key string) ParamHandler {
	if t == nil || t.handlers == nil {
		return nil
	}
	return t.handlers[key]
}

func (t *Terminal) retain() { t.refCount++ }

// release drops one frame reference and tears the backend down when the
// count reaches zero. quiet suppresses teardown (used when the backend
// itself is already going away).
func (t *Terminal) release(quiet bool) {
	if t.refCount > 0 {
		t.refCount--
	}
	if t.refCount == 0 && !quiet && t.hooks.Teardown != nil {
		t.hooks.Teardown(t)
	}
}
