// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/lifecycle_test.go
// Summary: Exercises frame creation and the cascading delete: protections,
// child handling, role replacement and terminal teardown.

package frame

import (
	"errors"
	"testing"
)

func TestSoleFrameProtected(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	f := mustFrame(t, e, term, FrameOptions{})

	if err := e.Delete(f, false); !errors.Is(err, ErrSoleFrameProtected) {
		t.Fatalf("err = %v, want ErrSoleFrameProtected", err)
	}
	// Force does not override the last-frame rule.
	if err := e.Delete(f, true); !errors.Is(err, ErrSoleFrameProtected) {
		t.Fatalf("forced err = %v, want ErrSoleFrameProtected", err)
	}
	if !f.Live() {
		t.Fatal("protected frame died")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mustFrame(t, e, term, FrameOptions{})
	f := mustFrame(t, e, term, FrameOptions{})

	var after int
	e.OnAfterDelete(func(*Frame) { after++ })

	if err := e.Delete(f, false); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := e.Delete(f, false); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if after != 1 {
		t.Fatalf("after-delete hooks ran %d times, want 1", after)
	}
	if f.State() != StateDead || f.Terminal() != nil {
		t.Fatalf("state = %v, terminal = %v", f.State(), f.Terminal())
	}
}

func TestSurrogateMinibufferProtected(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	lender := mustFrame(t, e, term, FrameOptions{})
	borrower, err := e.NewFrameWithoutMinibuffer(term, lender, FrameOptions{})
	if err != nil {
		t.Fatalf("borrower: %v", err)
	}

	if err := e.Delete(lender, false); !errors.Is(err, ErrSurrogateMinibufferProtected) {
		t.Fatalf("err = %v, want ErrSurrogateMinibufferProtected", err)
	}
	if !lender.Live() || !borrower.Live() {
		t.Fatal("protected frames died")
	}

	// Quiet deletion (backend teardown) takes the borrower down too.
	if err := e.DeleteWithMode(lender, DeleteQuiet); err != nil {
		t.Fatalf("quiet delete: %v", err)
	}
	if lender.Live() || borrower.Live() {
		t.Fatal("quiet delete left frames alive")
	}
}

func TestDeleteBorrowerThenLenderSucceeds(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	keep := mustFrame(t, e, term, FrameOptions{})
	lender := mustFrame(t, e, term, FrameOptions{})
	borrower, err := e.NewFrameWithoutMinibuffer(term, lender, FrameOptions{})
	if err != nil {
		t.Fatalf("borrower: %v", err)
	}

	if err := e.Delete(lender, false); !errors.Is(err, ErrSurrogateMinibufferProtected) {
		t.Fatalf("err = %v, want ErrSurrogateMinibufferProtected", err)
	}

	// Deleting the borrower first releases the protection.
	if err := e.Delete(borrower, false); err != nil {
		t.Fatalf("delete borrower: %v", err)
	}
	if err := e.Delete(lender, false); err != nil {
		t.Fatalf("delete lender after borrower: %v", err)
	}
	if borrower.Live() || lender.Live() {
		t.Fatal("frames still alive")
	}
	if !keep.Live() {
		t.Fatal("unrelated frame died")
	}
}

func TestTTYCreationRejectsCrossRootBorrow(t *testing.T) {
	e, _, _, term := testSetup(Text)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})

	// A child of b may not borrow a's minibuffer: the borrow relation must
	// stay within one root, at creation just as on later writes.
	if _, err := e.NewFrameWithoutMinibuffer(term, a, FrameOptions{Parent: b}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("cross-root borrow at creation: err = %v, want ErrInvalidParameter", err)
	}

	c, err := e.NewFrameWithoutMinibuffer(term, a, FrameOptions{Parent: a})
	if err != nil {
		t.Fatalf("same-root borrow: %v", err)
	}
	if c.MinibufferWindow() != a.MinibufferWindow() {
		t.Fatal("borrow not established")
	}
}

func TestDeleteCascadesToChildren(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	p := mustFrame(t, e, term, FrameOptions{})
	r := mustFrame(t, e, term, FrameOptions{})
	c, err := e.NewFrameWithoutMinibuffer(term, p, FrameOptions{Parent: p})
	if err != nil {
		t.Fatalf("child: %v", err)
	}

	if err := e.Delete(p, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if p.Live() || c.Live() {
		t.Fatal("cascade left frames alive")
	}
	if e.SelectedFrame() != r {
		t.Fatalf("selected = %v, want %v", e.SelectedFrame(), r)
	}
	if term.DefaultMinibufferFrame() != r {
		t.Fatalf("default minibuffer frame = %v, want %v", term.DefaultMinibufferFrame(), r)
	}
}

func TestDeleteUnparentsMinibufferChild(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	r := mustFrame(t, e, term, FrameOptions{})
	p, err := e.NewFrameWithoutMinibuffer(term, r, FrameOptions{})
	if err != nil {
		t.Fatalf("p: %v", err)
	}
	c1 := mustFrame(t, e, term, FrameOptions{Parent: p})
	if err := e.Set(p, ParamMinibuffer, c1.MinibufferWindow()); err != nil {
		t.Fatalf("borrow from child: %v", err)
	}
	// An unrelated frame also borrows from c1, so c1 must survive.
	x, err := e.NewFrameWithoutMinibuffer(term, c1, FrameOptions{})
	if err != nil {
		t.Fatalf("x: %v", err)
	}

	if err := e.Delete(p, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !c1.Live() {
		t.Fatal("minibuffer child was deleted")
	}
	if c1.Parent() != nil {
		t.Fatalf("minibuffer child still has parent %v", c1.Parent())
	}
	if !x.Live() || x.MinibufferWindow() != c1.MinibufferWindow() {
		t.Fatal("external borrower broken")
	}
}

func TestDeleteDropsUnusedMinibufferChild(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mustFrame(t, e, term, FrameOptions{})
	p, err := e.NewFrameWithoutMinibuffer(term, nil, FrameOptions{})
	if err != nil {
		t.Fatalf("p: %v", err)
	}
	c1 := mustFrame(t, e, term, FrameOptions{Parent: p})
	if err := e.Set(p, ParamMinibuffer, c1.MinibufferWindow()); err != nil {
		t.Fatalf("borrow from child: %v", err)
	}

	if err := e.Delete(p, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c1.Live() {
		t.Fatal("orphaned minibuffer child survived with no borrowers")
	}
}

func TestDeleteBeforeDependentsDieFirst(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})
	dep := mustFrame(t, e, term, FrameOptions{})
	if err := e.Set(dep, ParamDeleteBefore, a); err != nil {
		t.Fatalf("delete-before: %v", err)
	}

	var order []string
	e.OnAfterDelete(func(f *Frame) { order = append(order, f.Name()) })

	if err := e.Delete(a, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if dep.Live() || a.Live() {
		t.Fatal("delete-before chain left frames alive")
	}
	if len(order) != 2 || order[0] != dep.Name() || order[1] != a.Name() {
		t.Fatalf("deletion order = %v, want [%s %s]", order, dep.Name(), a.Name())
	}
	if !b.Live() {
		t.Fatal("unrelated frame died")
	}
}

func TestTerminalTeardownAfterLastFrame(t *testing.T) {
	e, bA, _, termA := testSetup(Graphical)
	bB := &stubBackend{e: e}
	termB := NewTerminal("other", Graphical, bB.hooks())
	termB.CellW, termB.CellH = 1, 1

	fa := mustFrame(t, e, termA, FrameOptions{})
	fb := mustFrame(t, e, termB, FrameOptions{})
	_ = fb

	if err := e.Delete(fa, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if bA.teardowns != 1 {
		t.Fatalf("teardowns = %d, want 1", bA.teardowns)
	}
	if bB.teardowns != 0 {
		t.Fatalf("other terminal torn down")
	}
	if termA.RefCount() != 0 {
		t.Fatalf("refcount = %d", termA.RefCount())
	}
}

func TestTTYTopFrameReplacedOnDelete(t *testing.T) {
	e, _, _, term := testSetup(Text)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})

	if term.TopFrame() != a {
		t.Fatalf("top = %v, want %v", term.TopFrame(), a)
	}
	if err := e.Delete(a, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if term.TopFrame() != b {
		t.Fatalf("top = %v, want %v", term.TopFrame(), b)
	}
	if e.SelectedFrame() != b {
		t.Fatalf("selected = %v, want %v", e.SelectedFrame(), b)
	}
}

func TestDeleteHookPanicIsContained(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mustFrame(t, e, term, FrameOptions{})
	f := mustFrame(t, e, term, FrameOptions{})

	e.OnBeforeDelete(func(*Frame) { panic("boom") })
	if err := e.Delete(f, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.Live() {
		t.Fatal("frame survived after hook panic")
	}
}

func TestBeforeDeleteHookDeletingAnotherFrame(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mustFrame(t, e, term, FrameOptions{})
	f := mustFrame(t, e, term, FrameOptions{})
	other := mustFrame(t, e, term, FrameOptions{})

	e.OnBeforeDelete(func(dying *Frame) {
		if dying == f && other.Live() {
			_ = e.Delete(other, false)
		}
	})
	if err := e.Delete(f, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.Live() || other.Live() {
		t.Fatal("frames still alive")
	}
}

func TestFocusRedirectionsClearedOnDelete(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})
	if err := e.RedirectFocus(a, b); err != nil {
		t.Fatalf("redirect: %v", err)
	}

	if err := e.Delete(b, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if a.FocusTarget() != nil {
		t.Fatalf("stale focus target %v", a.FocusTarget())
	}
}

func TestMinibufferOnlyFrame(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	mini, err := e.NewMinibufferOnlyFrame(term, FrameOptions{})
	if err != nil {
		t.Fatalf("mini-only: %v", err)
	}
	if !mini.MinibufferOnly() || mini.RootWindow() != mini.MinibufferWindow() {
		t.Fatal("root window is not the minibuffer window")
	}
	if term.DefaultMinibufferFrame() != mini {
		t.Fatalf("default minibuffer frame = %v", term.DefaultMinibufferFrame())
	}

	// A minibuffer-only frame never becomes the last selected normal frame.
	normal := mustFrame(t, e, term, FrameOptions{})
	if err := e.Select(normal); err != nil {
		t.Fatalf("select: %v", err)
	}
	if e.lastNonMini != normal {
		t.Fatalf("lastNonMini = %v, want %v", e.lastNonMini, normal)
	}
}
