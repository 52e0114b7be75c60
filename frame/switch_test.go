// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/switch_test.go
// Summary: Exercises frame selection: window commits, minibuffer
// handling, focus redirection and tty top-frame promotion.

package frame

import (
	"errors"
	"testing"
)

func TestSelectCommitsFrameAndWindow(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})

	if e.SelectedFrame() != a {
		t.Fatalf("initial selection = %v, want %v", e.SelectedFrame(), a)
	}
	if err := e.Select(b); err != nil {
		t.Fatalf("select: %v", err)
	}
	if e.SelectedFrame() != b || b.SelectedWindow() != b.RootWindow() {
		t.Fatalf("selected = %v window = %v", e.SelectedFrame(), b.SelectedWindow())
	}
}

func TestSelectRejectsTooltipAndDeadFrames(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mustFrame(t, e, term, FrameOptions{})
	tip := mustFrame(t, e, term, FrameOptions{Tooltip: true})

	if err := e.Select(tip); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("tooltip select err = %v", err)
	}

	dead := mustFrame(t, e, term, FrameOptions{})
	if err := e.Delete(dead, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.Select(dead); !errors.Is(err, ErrNotLive) {
		t.Fatalf("dead select err = %v", err)
	}
}

func TestSwitchRetargetsFocusRedirections(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})
	c := mustFrame(t, e, term, FrameOptions{})

	// c's keystrokes go to the selected frame a.
	if err := e.RedirectFocus(c, a); err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if err := e.Select(b); err != nil {
		t.Fatalf("select: %v", err)
	}
	if c.FocusTarget() != b {
		t.Fatalf("focus target = %v, want %v", c.FocusTarget(), b)
	}
}

func TestSwitchShrinksActiveMinibufferLeftBehind(t *testing.T) {
	e, _, tree, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})

	tree.active[a.MinibufferWindow()] = true
	if err := e.Select(b); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(tree.shrunk) != 1 || tree.shrunk[0] != a.MinibufferWindow() {
		t.Fatalf("shrunk = %v", tree.shrunk)
	}
}

func TestSwitchAvoidsInactiveMinibufferWindow(t *testing.T) {
	e, _, tree, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})

	// b's selection was left on its minibuffer, but no session is active.
	b.selectedWindow = b.MinibufferWindow()
	tree.mru[b] = b.RootWindow()
	if err := e.Select(b); err != nil {
		t.Fatalf("select: %v", err)
	}
	if b.SelectedWindow() != b.RootWindow() {
		t.Fatalf("selected window = %v, want root", b.SelectedWindow())
	}
	_ = a
}

func TestSelectMinibufferOnSwitch(t *testing.T) {
	e, _, tree, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})
	_ = a

	tree.active[b.MinibufferWindow()] = true
	e.SelectMinibufferOnSwitch(b)
	if err := e.Select(b); err != nil {
		t.Fatalf("select: %v", err)
	}
	if b.SelectedWindow() != b.MinibufferWindow() {
		t.Fatalf("selected window = %v, want minibuffer", b.SelectedWindow())
	}
	if b.selectMini {
		t.Fatal("selectMini flag not consumed")
	}
}

func TestTTYSelectPromotesRootToTop(t *testing.T) {
	e, _, _, term := testSetup(Text)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{Cols: 100, Lines: 30})
	child, err := e.NewFrameWithoutMinibuffer(term, b, FrameOptions{Parent: b, Cols: 20, Lines: 10})
	if err != nil {
		t.Fatalf("child: %v", err)
	}

	if term.TopFrame() != a {
		t.Fatalf("top = %v, want %v", term.TopFrame(), a)
	}

	// Selecting a child frame promotes its root and adopts the screen size.
	if err := e.Select(child); err != nil {
		t.Fatalf("select: %v", err)
	}
	if term.TopFrame() != b {
		t.Fatalf("top = %v, want %v", term.TopFrame(), b)
	}
	if b.Cols != 80 || b.Lines != 25 {
		t.Fatalf("promoted root = %dx%d, want screen size 80x25", b.Cols, b.Lines)
	}
	if !b.Garbaged() {
		t.Fatal("promoted root not garbaged")
	}
	if e.SelectedFrame() != child {
		t.Fatalf("selected = %v, want %v", e.SelectedFrame(), child)
	}
}

func TestRedirectFocusValidation(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	dead := mustFrame(t, e, term, FrameOptions{})
	if err := e.Delete(dead, false); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := e.RedirectFocus(a, dead); !errors.Is(err, ErrNotLive) {
		t.Fatalf("err = %v, want ErrNotLive", err)
	}
	if err := e.RedirectFocus(a, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}
