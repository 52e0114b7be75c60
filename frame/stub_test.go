// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/stub_test.go
// Summary: Stub backend and window tree used by the engine tests.

package frame

import (
	"fmt"
	"testing"
)

type resizeCall struct {
	name string
	w, h int
}

type stubBackend struct {
	e *Engine

	// autoConfirm makes the backend behave like a synchronous window
	// system: every resize request is confirmed immediately.
	autoConfirm bool

	resizes    []resizeCall
	positions  []resizeCall
	visibility []string
	iconified  []string
	deleted    []string
	focused    []string
	teardowns  int
}

func (b *stubBackend) hooks() Hooks {
	return Hooks{
		ResizeFrame: func(f *Frame, w, h int) {
			b.resizes = append(b.resizes, resizeCall{f.Name(), w, h})
			if b.autoConfirm {
				b.e.ConfirmResize(f, w, h)
			}
		},
		SetPosition: func(f *Frame, x, y int) {
			b.positions = append(b.positions, resizeCall{f.Name(), x, y})
		},
		SetVisibility: func(f *Frame, visible bool) {
			b.visibility = append(b.visibility, fmt.Sprintf("%s=%v", f.Name(), visible))
		},
		Iconify: func(f *Frame) {
			b.iconified = append(b.iconified, f.Name())
		},
		Focus: func(f *Frame, activate bool) {
			if activate {
				b.focused = append(b.focused, f.Name())
			}
		},
		DeleteFrame: func(f *Frame) {
			b.deleted = append(b.deleted, f.Name())
		},
		Teardown: func(t *Terminal) {
			b.teardowns++
		},
	}
}

type moveRec struct {
	from, to string
	force    bool
}

type stubTree struct {
	NopWindowTree

	minCols, minLines int
	active            map[*Window]bool
	shrunk            []*Window
	moved             []moveRec
	mru               map[*Frame]*Window
}

func newStubTree() *stubTree {
	return &stubTree{
		active: make(map[*Window]bool),
		mru:    make(map[*Frame]*Window),
	}
}

func (s *stubTree) MinimumInnerSize(f *Frame, horizontal bool) int {
	if horizontal && s.minCols > 0 {
		return s.minCols
	}
	if !horizontal && s.minLines > 0 {
		return s.minLines
	}
	return s.NopWindowTree.MinimumInnerSize(f, horizontal)
}

func (s *stubTree) MostRecentlyUsed(f *Frame) *Window {
	if w, ok := s.mru[f]; ok {
		return w
	}
	return s.NopWindowTree.MostRecentlyUsed(f)
}

func (s *stubTree) MinibufferActive(w *Window) bool {
	return s.active[w]
}

func (s *stubTree) ShrinkMinibuffer(w *Window) {
	s.shrunk = append(s.shrunk, w)
}

func (s *stubTree) MoveMinibuffers(from, to *Frame, force bool) {
	s.moved = append(s.moved, moveRec{from.Name(), to.Name(), force})
}

// testSetup builds an engine with a stub tree and one stub terminal of
// the given kind. Graphical terminals use 1x1 cells so pixel and cell
// arithmetic coincide in tests.
func testSetup(kind TerminalKind) (*Engine, *stubBackend, *stubTree, *Terminal) {
	tree := newStubTree()
	e := NewEngine(tree)
	b := &stubBackend{e: e}
	t := NewTerminal("stub", kind, b.hooks())
	t.CellW, t.CellH = 1, 1
	return e, b, tree, t
}

func mustFrame(tt *testing.T, e *Engine, t *Terminal, opts FrameOptions) *Frame {
	tt.Helper()
	f, err := e.NewFrame(t, opts)
	if err != nil {
		tt.Fatalf("NewFrame: %v", err)
	}
	return f
}
