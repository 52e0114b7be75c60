// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/params.go
// Summary: The authoritative parameter alist: generic writes, backend
// handler dispatch and the structurally significant keys.
// Usage: The only mutator of the minibuffer borrowing relation and the
// parent-frame / delete-before links.

package frame

// Structural and well-known parameter keys. Arbitrary keys are stored
// verbatim.
const (
	ParamName             = "name"
	ParamMinibuffer       = "minibuffer"
	ParamParentFrame      = "parent-frame"
	ParamDeleteBefore     = "delete-before"
	ParamBufferList       = "buffer-list"
	ParamBuriedBufferList = "buried-buffer-list"
	ParamKeepRatio        = "keep-ratio"
	ParamNoOtherFrame     = "no-other-frame"
	ParamVisibility       = "visibility"
)

// MinibufferSpec is the non-window form of the minibuffer parameter.
type MinibufferSpec int

const (
	// MinibufferNone declares a frame without a minibuffer of its own.
	MinibufferNone MinibufferSpec = iota
	// MinibufferOwned declares that the frame owns its minibuffer window.
	MinibufferOwned
	// MinibufferOnly declares that the root window is the minibuffer.
	MinibufferOnly
)

// Get reads a parameter. Structural keys always return the canonical
// value kept in sync with the dedicated fields.
func (e *Engine) Get(f *Frame, key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	switch key {
	case ParamName:
		return f.name, true
	case ParamMinibuffer:
		switch {
		case f.miniOnly:
			return MinibufferOnly, true
		case f.miniWindow == nil:
			return MinibufferNone, true
		case f.ownsMini:
			return MinibufferOwned, true
		default:
			return f.miniWindow, true
		}
	case ParamParentFrame:
		if f.parent == nil {
			return nil, true
		}
		return f.parent, true
	case ParamBufferList:
		return e.filterBuffers(f.bufferList), true
	case ParamBuriedBufferList:
		return e.filterBuffers(f.buriedBufferList), true
	}
	for _, p := range f.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Parameters returns a copy of the ordered alist.
func (e *Engine) Parameters(f *Frame) []Param {
	return append([]Param(nil), f.params...)
}

// Set writes one parameter, running the invariant checks for structural
// keys and any backend handler registered for the key.
func (e *Engine) Set(f *Frame, key string, value any) error {
	if f == nil || !f.Live() {
		return ErrNotLive
	}
	old, _ := e.Get(f, key)

	switch key {
	case ParamName:
		name, ok := value.(string)
		if !ok {
			return ErrInvalidParameter
		}
		e.setName(f, name)
	case ParamMinibuffer:
		v, err := e.storeMinibufferParam(f, value)
		if err != nil {
			return err
		}
		value = v
	case ParamParentFrame:
		if err := e.storeParentParam(f, value); err != nil {
			return err
		}
	case ParamDeleteBefore:
		if err := e.storeDeleteBeforeParam(f, value); err != nil {
			return err
		}
	case ParamBufferList:
		list, ok := value.([]any)
		if !ok && value != nil {
			return ErrInvalidParameter
		}
		f.bufferList = e.filterBuffers(list)
		value = f.bufferList
	case ParamBuriedBufferList:
		list, ok := value.([]any)
		if !ok && value != nil {
			return ErrInvalidParameter
		}
		f.buriedBufferList = e.filterBuffers(list)
		value = f.buriedBufferList
	case ParamVisibility:
		if err := e.storeVisibilityParam(f, value); err != nil {
			return err
		}
	}

	f.storeParam(key, value)

	if h := f.term.handler(key); h != nil {
		if err := h(f, key, old, value); err != nil {
			return err
		}
	}
	return nil
}

// SetMany applies an ordered list of parameter writes in reverse of the
// listed order, so structurally-prior keys are resolved before derived
// ones. The first error aborts the batch; earlier (later-listed) writes
// stay applied.
func (e *Engine) SetMany(f *Frame, pairs []Param) error {
	for i := len(pairs) - 1; i >= 0; i-- {
		if err := e.Set(f, pairs[i].Key, pairs[i].Value); err != nil {
			return err
		}
	}
	return nil
}

func (f *Frame) storeParam(key string, value any) {
	for i := range f.params {
		if f.params[i].Key == key {
			f.params[i].Value = value
			return
		}
	}
	f.params = append(f.params, Param{Key: key, Value: value})
}

func (e *Engine) setName(f *Frame, name string) {
	if name == "" {
		if f.explicitName {
			e.nameCounter++
			f.name = defaultFrameName(e.nameCounter)
			f.explicitName = false
		}
		f.storeParam(ParamName, f.name)
		return
	}
	f.name = name
	f.explicitName = true
	f.storeParam(ParamName, name)
}

// storeMinibufferParam validates a minibuffer write. The ownership of an
// existing minibuffer cannot be changed, only confirmed.
func (e *Engine) storeMinibufferParam(f *Frame, value any) (any, error) {
	if w, ok := value.(*Window); ok {
		switch {
		case !w.Live() || !w.mini:
			return nil, ErrInvalidParameter
		case f.miniOnly:
			if w == f.miniWindow {
				return MinibufferOnly, nil
			}
			return nil, ErrImmutable
		case f.HasOwnMinibuffer():
			if w == f.miniWindow {
				return MinibufferOwned, nil
			}
			return nil, ErrImmutable
		case f.Text() && e.RootOf(w.frame) != e.RootOf(f):
			// A frame and its surrogate minibuffer frame must share roots.
			return nil, ErrInvalidParameter
		default:
			f.miniWindow = w
			f.ownsMini = false
			return w, nil
		}
	}

	spec, ok := value.(MinibufferSpec)
	if !ok {
		return nil, ErrInvalidParameter
	}
	old, _ := e.Get(f, ParamMinibuffer)
	if oldW, borrowed := old.(*Window); borrowed {
		if spec == MinibufferNone {
			// A nil-ish write leaves an existing borrow alone.
			return oldW, nil
		}
		return nil, ErrImmutable
	}
	if old != spec {
		return nil, ErrImmutable
	}
	return spec, nil
}

func (e *Engine) storeParentParam(f *Frame, value any) error {
	var parent *Frame
	if value != nil {
		p, ok := value.(*Frame)
		if !ok {
			return ErrInvalidParameter
		}
		parent = p
	}
	if parent == f.parent {
		return nil
	}
	if parent != nil {
		if !parent.Live() {
			return ErrInvalidParameter
		}
		if err := e.CheckAcyclic(f, parent, ParentRelation); err != nil {
			return err
		}
		if parent.term != f.term {
			return ErrInvalidParameter
		}
	}

	oldParent := f.parent
	f.parent = parent
	if f.Text() {
		// Trial assignment: reparenting must not break the shared-root rule
		// for any frame borrowing a minibuffer.
		for _, g := range e.frames {
			if !g.Live() || g.miniWindow == nil || g.ownsMini || !g.Text() {
				continue
			}
			if e.RootOf(g) != e.RootOf(g.miniWindow.frame) {
				f.parent = oldParent
				return ErrInvalidParameter
			}
		}
	}

	if parent != nil {
		f.zOrder = e.nextZOrder(parent)
	} else {
		f.zOrder = 0
	}
	if f.Text() {
		e.RootOf(f).garbaged = true
		if oldParent != nil {
			e.RootOf(oldParent).garbaged = true
		}
	}
	return nil
}

func (e *Engine) storeDeleteBeforeParam(f *Frame, value any) error {
	if value == nil {
		return nil
	}
	target, ok := value.(*Frame)
	if !ok || !target.Live() {
		return ErrInvalidParameter
	}
	return e.CheckAcyclic(f, target, DeleteBeforeRelation)
}

func (e *Engine) storeVisibilityParam(f *Frame, value any) error {
	switch v := value.(type) {
	case bool:
		if v {
			return e.MakeVisible(f)
		}
		return e.MakeInvisible(f, false)
	case Visibility:
		switch v {
		case Visible:
			return e.MakeVisible(f)
		case Iconified:
			return e.Iconify(f)
		default:
			return e.MakeInvisible(f, false)
		}
	}
	return ErrInvalidParameter
}

// filterBuffers lazily drops dead buffer references on every read and
// write of the buffer-list parameters. Filtering always builds a fresh
// slice; reads must never shift elements inside the stored list.
func (e *Engine) filterBuffers(list []any) []any {
	if e.bufferLive == nil || list == nil {
		return list
	}
	out := make([]any, 0, len(list))
	for _, b := range list {
		if e.bufferLive(b) {
			out = append(out, b)
		}
	}
	return out
}
