// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/driver.go
// Summary: Character-terminal backend: event loop, screen resize feed and
// the frame renderer with child-frame borders.
// Usage: One Driver per controlling terminal. Run blocks until the context
// is cancelled or Stop is called; it owns the screen for that duration.

package tty

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelframe/frame"
)

// Driver binds a frame.Engine to a character terminal through tcell.
type Driver struct {
	engine *frame.Engine
	screen ScreenDevice
	term   *frame.Terminal
	logger *log.Logger

	fg, bg tcell.Color

	// OnKey receives key events the driver does not consume itself.
	OnKey func(ev *tcell.EventKey)

	// ColorProbe overrides the OSC default-color query; nil probes the
	// controlling terminal.
	ColorProbe func() (fg, bg tcell.Color)

	// stopping is shared between Run's loop and Stop callers on other
	// goroutines.
	stopping atomic.Bool
}

// stopEvent unblocks PollEvent when Stop is called from another goroutine.
type stopEvent struct{ tcell.EventTime }

// NewDriver creates a driver for the given screen. The terminal's
// dimensions stay zero until Run has initialized the screen.
func NewDriver(engine *frame.Engine, screen ScreenDevice, name string) *Driver {
	d := &Driver{
		engine: engine,
		screen: screen,
		logger: log.Default(),
		fg:     tcell.ColorWhite,
		bg:     tcell.ColorBlack,
	}
	d.term = frame.NewTerminal(name, frame.Text, frame.Hooks{
		SetVisibility: func(f *frame.Frame, visible bool) { d.Render() },
		DeleteFrame:   func(f *frame.Frame) { d.Render() },
		Teardown:      func(t *frame.Terminal) { d.Stop() },
	})
	d.term.RegisterParamHandler(frame.ParamName, func(f *frame.Frame, key string, old, new any) error {
		d.Render()
		return nil
	})
	return d
}

// Terminal returns the backend binding frames are created on.
func (d *Driver) Terminal() *frame.Terminal { return d.term }

// SetLogger replaces the driver's logger.
func (d *Driver) SetLogger(l *log.Logger) {
	if l != nil {
		d.logger = l
	}
}

// Run initializes the screen and processes events until ctx is cancelled
// or Stop is called.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("tty: screen init: %w", err)
	}
	defer d.screen.Fini()

	probe := d.ColorProbe
	if probe == nil {
		probe = func() (tcell.Color, tcell.Color) { return DetectColors(250 * time.Millisecond) }
	}
	d.fg, d.bg = probe()
	d.screen.SetStyle(tcell.StyleDefault.Foreground(d.fg).Background(d.bg))

	cols, lines := d.screen.Size()
	d.resize(cols, lines)

	go func() {
		<-ctx.Done()
		d.Stop()
	}()

	for {
		ev := d.screen.PollEvent()
		if ev == nil || d.stopping.Load() {
			return ctx.Err()
		}
		switch ev := ev.(type) {
		case *stopEvent:
			return ctx.Err()
		case *tcell.EventResize:
			cols, lines := ev.Size()
			d.resize(cols, lines)
		case *tcell.EventKey:
			if d.OnKey != nil {
				d.OnKey(ev)
			}
		}
	}
}

// Stop unblocks Run. Safe to call from any goroutine and more than once.
func (d *Driver) Stop() {
	if d.stopping.Swap(true) {
		return
	}
	if err := d.screen.PostEvent(&stopEvent{}); err != nil {
		d.logger.Printf("tty: stop event dropped: %v", err)
	}
}

// resize feeds the new physical screen size into the engine as a forced
// resize of the top frame.
func (d *Driver) resize(cols, lines int) {
	top := d.term.TopFrame()
	if top == nil || !top.Live() {
		d.term.Cols, d.term.Lines = cols, lines
		return
	}
	d.engine.NegotiateSize(top, cols, lines, frame.ResizeForce, false, "screen")
	d.Render()
}

// Render repaints the top frame and its child frames in stacking order.
func (d *Driver) Render() {
	if d.stopping.Load() {
		return
	}
	top := d.term.TopFrame()
	if top == nil || !top.Live() {
		return
	}
	d.screen.Clear()
	base := tcell.StyleDefault.Foreground(d.fg).Background(d.bg)
	d.fillRegion(0, 0, top.Cols, top.Lines, base)

	children := d.engine.Children(top)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].ZOrder() < children[j].ZOrder()
	})
	for _, c := range children {
		if c.Visibility() != frame.Visible {
			continue
		}
		d.drawChild(c, base.Reverse(true))
	}
	top.ClearGarbaged()
	d.screen.Show()
}

func (d *Driver) fillRegion(x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			d.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawChild paints a child frame's border box with the frame name in the
// top edge, clamped to the display width of the box.
func (d *Driver) drawChild(c *frame.Frame, style tcell.Style) {
	x, y := c.LeftPos, c.TopPos
	w, h := c.TotalCols, c.TotalLines
	if w < 2 || h < 2 {
		return
	}
	d.fillRegion(x, y, w, h, style)
	for col := x; col < x+w; col++ {
		d.screen.SetContent(col, y, tcell.RuneHLine, nil, style)
		d.screen.SetContent(col, y+h-1, tcell.RuneHLine, nil, style)
	}
	for row := y; row < y+h; row++ {
		d.screen.SetContent(x, row, tcell.RuneVLine, nil, style)
		d.screen.SetContent(x+w-1, row, tcell.RuneVLine, nil, style)
	}
	d.screen.SetContent(x, y, tcell.RuneULCorner, nil, style)
	d.screen.SetContent(x+w-1, y, tcell.RuneURCorner, nil, style)
	d.screen.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, style)
	d.screen.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, style)

	title := c.Name()
	if avail := w - 4; avail > 0 {
		title = runewidth.Truncate(title, avail, "…")
		col := x + 2
		for _, r := range title {
			d.screen.SetContent(col, y, r, nil, style)
			col += runewidth.RuneWidth(r)
		}
	}
	c.ClearGarbaged()
}
