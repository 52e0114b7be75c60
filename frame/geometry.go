// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: frame/geometry.go
// Summary: Geometry negotiation between text-cell size, inner pixel size
// and native (outer) pixel size, plus keep-ratio scaling of child frames.
// Usage: Called by the lifecycle manager and the parameter store whenever
// a size-affecting parameter changes. The only component besides the
// visibility manager that calls backend hooks.

package frame

import "time"

// ResizeMode controls whether a negotiation may notify the backend.
type ResizeMode int

const (
	// ResizeForce unconditionally notifies the backend, even when sizes do
	// not change. Used to pass the initial size at creation.
	ResizeForce ResizeMode = iota
	// ResizeNative notifies the backend only if the native size changes.
	ResizeNative
	// ResizeImplied notifies the backend unless the inhibit-implied policy
	// suppresses it for this parameter. Character terminals always inhibit.
	ResizeImplied
	// ResizeMinimum notifies the backend only if window minimum sizes
	// would otherwise be violated.
	ResizeMinimum
	// ResizeInternal never notifies the backend; the window tree is
	// repacked internally.
	ResizeInternal
)

func (m ResizeMode) String() string {
	switch m {
	case ResizeForce:
		return "force"
	case ResizeNative:
		return "native"
	case ResizeImplied:
		return "implied"
	case ResizeMinimum:
		return "minimum"
	default:
		return "internal"
	}
}

// AppliedSize is the outcome of a negotiation. When Requested is set the
// native size was asked of the backend and the frame keeps its old
// committed size until ConfirmResize arrives.
type AppliedSize struct {
	Cols, Lines      int
	NativeW, NativeH int
	Requested        bool
}

// KeepRatio is the per-frame policy scaling size and position when the
// parent frame resizes. Stored under the keep-ratio parameter; the plain
// value true means "scale everything".
type KeepRatio struct {
	Width, Height bool // scale the size along this axis
	Left, Top     bool // scale the offset from this edge
}

func keepRatioValue(v any) (KeepRatio, bool) {
	switch kr := v.(type) {
	case bool:
		if kr {
			return KeepRatio{Width: true, Height: true, Left: true, Top: true}, true
		}
	case KeepRatio:
		if kr.Width || kr.Height || kr.Left || kr.Top {
			return kr, true
		}
	}
	return KeepRatio{}, false
}

// ttyMinInnerLines floors a character-terminal frame's inner height so
// the mode line and echo area still fit under the text area.
func (f *Frame) ttyMinInnerLines() int {
	if f.miniOnly {
		return 1
	}
	lines := 2 // one text line plus the mode line
	if f.HasOwnMinibuffer() {
		lines++ // echo area
	}
	return lines
}

func (e *Engine) inhibitImpliedResize(f *Frame, parameter string) bool {
	if e.policies.InhibitImplied == ImpliedForce {
		return true
	}
	if !f.canResize {
		// The frame has not received its requested initial size yet.
		return false
	}
	return e.policies.InhibitImplied == ImpliedInhibited || f.Text()
}

// NegotiateSize adjusts the size of f. textW and textH are the requested
// text-area size in pixels; mode decides whether the backend may be
// consulted, pretend suppresses syncing the terminal's recorded screen
// size, and parameter names the triggering parameter for the history and
// the inhibit policy.
//
// For ResizeImplied and ResizeMinimum a negative dimension means "keep
// the current text size and only fix up the native size if needed".
// Geometry requests are clamped, never rejected; a dead or nil frame
// yields an identity result.
func (e *Engine) NegotiateSize(f *Frame, textW, textH int, mode ResizeMode, pretend bool, parameter string) AppliedSize {
	if f == nil || f.state != StateLive {
		return AppliedSize{}
	}

	unitW, unitH := f.unitW(), f.unitH()
	oldNativeW, oldNativeH := f.PixelW, f.PixelH
	oldCols, oldLines := f.Cols, f.Lines
	oldTextW, oldTextH := f.TextW, f.TextH

	// The old inner size comes from the windows, not the frame fields: the
	// borders may already carry new values.
	oldInnerW := f.rootWindow.PixelW
	oldInnerH := f.rootWindow.PixelH
	if f.miniWindow != nil && f.ownsMini && !f.miniOnly {
		oldInnerH += f.miniWindow.PixelH
	}

	minInnerW := e.tree.MinimumInnerSize(f, true) * unitW
	if minInnerW < unitW {
		minInnerW = unitW
	}
	minInnerH := e.tree.MinimumInnerSize(f, false) * unitH
	if minInnerH < unitH {
		minInnerH = unitH
	}
	if f.Text() {
		if floor := f.ttyMinInnerLines() * unitH; minInnerH < floor {
			minInnerH = floor
		}
	}

	var inhibitH, inhibitV bool
	switch mode {
	case ResizeImplied, ResizeMinimum:
		if textW < 0 {
			textW = f.TextW
		}
		if textH < 0 {
			textH = f.TextH
		}
		inhibitH = f.InnerWidth() >= minInnerW &&
			(mode == ResizeMinimum || e.inhibitImpliedResize(f, parameter))
		inhibitV = f.InnerHeight() >= minInnerH &&
			(mode == ResizeMinimum || e.inhibitImpliedResize(f, parameter))
	default:
		inhibitH = mode == ResizeInternal
		inhibitV = mode == ResizeInternal
	}

	newNativeW := oldNativeW
	if !inhibitH || mode == ResizeInternal {
		newNativeW = f.textToPixelW(textW)
		if min := minInnerW + 2*f.InternalBorder; newNativeW < min {
			newNativeW = min
		}
	}
	newInnerW := newNativeW - 2*f.InternalBorder
	newTextW := f.pixelToTextW(newNativeW)
	newCols := newTextW / unitW

	newNativeH := oldNativeH
	if !inhibitV || mode == ResizeInternal {
		newNativeH = f.textToPixelH(textH)
		if min := minInnerH + f.marginHeight() + 2*f.InternalBorder; newNativeH < min {
			newNativeH = min
		}
	}
	newInnerH := newNativeH - f.marginHeight() - 2*f.InternalBorder
	newTextH := f.pixelToTextH(newNativeH)
	newLines := newTextH / unitH

	rec := SizeChange{
		FrameID:   f.id,
		FrameName: f.name,
		At:        time.Now(),
		Mode:      mode,
		Parameter: parameter,
		Pretend:   pretend,
		OldTextW:  oldTextW, OldTextH: oldTextH,
		NewTextW: newTextW, NewTextH: newTextH,
		OldCols: oldCols, OldLines: oldLines,
		NewCols: newCols, NewLines: newLines,
		OldNativeW: oldNativeW, OldNativeH: oldNativeH,
		NewNativeW: newNativeW, NewNativeH: newNativeH,
		OldInnerW: oldInnerW, OldInnerH: oldInnerH,
		NewInnerW: newInnerW, NewInnerH: newInnerH,
		MinInnerW: minInnerW, MinInnerH: minInnerH,
		InhibitHorizontal: inhibitH,
		InhibitVertical:   inhibitV,
	}

	// Backend consultation path: record the request as pending and let the
	// confirmation callback commit the fields later.
	if f.Graphical() && f.canResize &&
		((!inhibitH && (newNativeW != oldNativeW || mode == ResizeForce)) ||
			(!inhibitV && (newNativeH != oldNativeH || mode == ResizeForce))) {
		rec.Requested = true
		e.recordSizeChange(rec)

		f.pendW, f.pendH = newNativeW, newNativeH
		if f.term.hooks.ResizeFrame != nil {
			f.term.hooks.ResizeFrame(f, newNativeW, newNativeH)
		}
		f.resized = true
		return AppliedSize{Cols: oldCols, Lines: oldLines, NativeW: newNativeW, NativeH: newNativeH, Requested: true}
	}

	e.recordSizeChange(rec)

	if newTextW == oldTextW && newTextH == oldTextH &&
		newInnerW == oldInnerW && newInnerH == oldInnerH &&
		newNativeW == oldNativeW && newNativeH == oldNativeH &&
		newCols == oldCols && newLines == oldLines {
		// No change.
		return AppliedSize{Cols: oldCols, Lines: oldLines, NativeW: oldNativeW, NativeH: oldNativeH}
	}

	// Internal resize: repack the window tree and commit all size fields.
	// Only the top frame mirrors the physical screen; other tty roots keep
	// their own sizes until promoted.
	if newInnerW != oldInnerW {
		e.tree.Repack(f, newInnerW, true)
		if f.Text() && f == f.term.topFrame && !pretend {
			f.term.Cols = newCols
		}
	}
	if newInnerH != oldInnerH {
		e.tree.Repack(f, newInnerH, false)
		if f.Text() && f == f.term.topFrame && !pretend {
			f.term.Lines = newLines
		}
	}

	f.Cols, f.Lines = newCols, newLines
	f.TextW, f.TextH = newTextW, newTextH
	f.PixelW, f.PixelH = newNativeW, newNativeH
	f.TotalCols = newNativeW / unitW
	f.TotalLines = newNativeH / unitH

	f.garbaged = true
	if f.Text() && f.parent != nil {
		e.RootOf(f).garbaged = true
	}
	f.resized = true

	if newNativeW != oldNativeW || newNativeH != oldNativeH {
		for _, c := range e.Frames() {
			if c.parent == f && c.Live() {
				e.applyKeepRatio(c, f, oldNativeW, oldNativeH, newNativeW, newNativeH)
			}
		}
	}

	return AppliedSize{Cols: newCols, Lines: newLines, NativeW: newNativeW, NativeH: newNativeH}
}

// ConfirmResize is the backend's asynchronous answer to a resize request.
// It finalizes the frame's size fields and clears the pending marker.
func (e *Engine) ConfirmResize(f *Frame, nativeW, nativeH int) {
	if f == nil || !f.Live() {
		return
	}
	f.pendW, f.pendH = -1, -1
	e.NegotiateSize(f, f.pixelToTextW(nativeW), f.pixelToTextH(nativeH), ResizeInternal, false, "confirmed")
	f.resized = true
}

// applyKeepRatio rescales child c after its parent p went from
// (oldW,oldH) to (newW,newH), honoring c's keep-ratio policy.
func (e *Engine) applyKeepRatio(c, p *Frame, oldW, oldH, newW, newH int) {
	v, ok := e.Get(c, ParamKeepRatio)
	if !ok {
		return
	}
	kr, ok := keepRatioValue(v)
	if !ok {
		return
	}
	if oldW <= 0 || oldH <= 0 {
		return
	}

	widthFactor := float64(newW) / float64(oldW)
	heightFactor := float64(newH) / float64(oldH)

	if kr.Left || kr.Top {
		posX, posY := c.LeftPos, c.TopPos
		if kr.Left {
			posX = int(float64(c.LeftPos)*widthFactor + 0.5)
			if !kr.Width && p.PixelW-c.PixelW < posX {
				// Position scales but the width does not: constrain the child
				// to its parent. The pre-shrink position is not restored when
				// the parent grows again.
				if avail := p.PixelW - c.PixelW; avail <= 0 {
					posX = 0
				} else {
					posX = int(float64(avail)*widthFactor*0.5 + 0.5)
				}
			}
			c.LeftPos = posX
		}
		if kr.Top {
			posY = int(float64(c.TopPos)*heightFactor + 0.5)
			if !kr.Height && p.PixelH-c.PixelH < posY {
				if avail := p.PixelH - c.PixelH; avail <= 0 {
					posY = 0
				} else {
					posY = int(float64(avail)*heightFactor*0.5 + 0.5)
				}
			}
			c.TopPos = posY
		}
		if c.term.hooks.SetPosition != nil {
			c.term.hooks.SetPosition(c, posX, posY)
		}
	}

	if kr.Width || kr.Height {
		textW := c.TextW
		if kr.Width {
			textW = c.pixelToTextW(int(float64(c.PixelW)*widthFactor + 0.5))
		}
		textH := c.TextH
		if kr.Height {
			textH = c.pixelToTextH(int(float64(c.PixelH)*heightFactor + 0.5))
		}
		e.NegotiateSize(c, textW, textH, ResizeNative, false, ParamKeepRatio)
	}
}

// MoveFrame updates the logical position of f and notifies the backend.
func (e *Engine) MoveFrame(f *Frame, x, y int) error {
	if f == nil || !f.Live() {
		return ErrNotLive
	}
	f.LeftPos, f.TopPos = x, y
	if f.term.hooks.SetPosition != nil {
		f.term.hooks.SetPosition(f, x, y)
	}
	if f.Text() && f.parent != nil {
		e.RootOf(f).garbaged = true
	}
	return nil
}

func (e *Engine) recordSizeChange(rec SizeChange) {
	e.history.append(rec)
	if e.recorder != nil {
		e.recorder.RecordSizeChange(rec)
	}
}
