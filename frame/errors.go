// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/errors.go
// Summary: Error taxonomy for frame operations.

package frame

import "errors"

var (
	// ErrInvalidParameter reports a malformed minibuffer, parent-frame or
	// delete-before value.
	ErrInvalidParameter = errors.New("frame: invalid parameter value")

	// ErrCircularDependency reports a parent-frame or delete-before chain
	// that would reach the frame itself.
	ErrCircularDependency = errors.New("frame: circular parameter dependency")

	// ErrSurrogateMinibufferProtected reports an attempt to delete a frame
	// whose minibuffer window is still borrowed by another live frame.
	ErrSurrogateMinibufferProtected = errors.New("frame: surrogate minibuffer frame protected")

	// ErrSoleFrameProtected reports an attempt to delete or hide the sole
	// visible or iconified frame.
	ErrSoleFrameProtected = errors.New("frame: sole visible or iconified frame protected")

	// ErrImmutable reports an attempt to change a structural parameter in a
	// way that would violate an invariant.
	ErrImmutable = errors.New("frame: parameter cannot be changed")

	// ErrNotLive reports a mutating operation on a dead frame handle.
	ErrNotLive = errors.New("frame: frame is not live")
)
