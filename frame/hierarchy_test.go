// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/hierarchy_test.go
// Summary: Exercises parent-chain queries and cycle detection.

package frame

import (
	"errors"
	"testing"
)

func TestRootAndAncestry(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	root := mustFrame(t, e, term, FrameOptions{})
	mid, _ := e.NewFrameWithoutMinibuffer(term, root, FrameOptions{Parent: root})
	leaf, _ := e.NewFrameWithoutMinibuffer(term, root, FrameOptions{Parent: mid})

	if e.RootOf(leaf) != root || e.RootOf(root) != root {
		t.Fatal("RootOf broken")
	}
	if !e.IsAncestor(root, leaf) || e.IsAncestor(leaf, root) {
		t.Fatal("IsAncestor broken")
	}
	if e.IsAncestor(leaf, leaf) {
		t.Fatal("a frame must not be its own ancestor")
	}
	if !e.Subsumes(leaf, leaf) || !e.Subsumes(root, leaf) || e.Subsumes(mid, root) {
		t.Fatal("Subsumes broken")
	}
}

func TestCheckAcyclicRelationsAreIndependent(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b, _ := e.NewFrameWithoutMinibuffer(term, a, FrameOptions{Parent: a})

	// A parent cycle is rejected.
	if err := e.CheckAcyclic(a, b, ParentRelation); !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("parent cycle: %v", err)
	}
	// The same edge in the delete-before relation is legal: the chains are
	// checked independently.
	if err := e.CheckAcyclic(a, b, DeleteBeforeRelation); err != nil {
		t.Fatalf("cross-relation: %v", err)
	}
	if err := e.Set(a, ParamDeleteBefore, b); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestCheckAcyclicWalksDeleteBeforeChain(t *testing.T) {
	e, _, _, term := testSetup(Graphical)
	a := mustFrame(t, e, term, FrameOptions{})
	b := mustFrame(t, e, term, FrameOptions{})
	c := mustFrame(t, e, term, FrameOptions{})

	if err := e.Set(a, ParamDeleteBefore, b); err != nil {
		t.Fatal(err)
	}
	if err := e.Set(b, ParamDeleteBefore, c); err != nil {
		t.Fatal(err)
	}
	// c -> a would close the loop through two hops.
	if err := e.Set(c, ParamDeleteBefore, a); !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("transitive cycle: %v", err)
	}
}
