// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/hierarchy.go
// Summary: Parent-chain queries: root frame, ancestry, subsumption and
// cycle detection for the parent-frame and delete-before relations.
// Usage: Called before every write to the parent-frame or delete-before
// parameter and before cascading deletions.

package frame

// Relation selects which chain CheckAcyclic walks. The two relations are
// checked independently; a cycle across both is legal.
type Relation int

const (
	ParentRelation Relation = iota
	DeleteBeforeRelation
)

// RootOf follows parent links up to the frame with no parent.
func (e *Engine) RootOf(f *Frame) *Frame {
	for f != nil && f.parent != nil {
		f = f.parent
	}
	return f
}

// IsAncestor reports whether a appears in b's parent chain. A frame is
// not its own ancestor.
func (e *Engine) IsAncestor(a, b *Frame) bool {
	if a == nil || b == nil {
		return false
	}
	for p := b.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// Subsumes reports whether a equals b or is an ancestor of b.
func (e *Engine) Subsumes(a, b *Frame) bool {
	return a != nil && (a == b || e.IsAncestor(a, b))
}

// relationNext returns the successor of g in the given relation chain.
func (e *Engine) relationNext(g *Frame, rel Relation) *Frame {
	if rel == ParentRelation {
		return g.parent
	}
	v, ok := e.Get(g, ParamDeleteBefore)
	if !ok {
		return nil
	}
	next, _ := v.(*Frame)
	return next
}

// CheckAcyclic walks the chain starting at proposed and fails with
// ErrCircularDependency if f would reach itself.
func (e *Engine) CheckAcyclic(f, proposed *Frame, rel Relation) error {
	for g := proposed; g != nil && g.Live(); g = e.relationNext(g, rel) {
		if g == f {
			return ErrCircularDependency
		}
	}
	return nil
}
