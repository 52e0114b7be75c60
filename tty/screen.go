// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/screen.go
// Summary: ScreenDevice abstraction over tcell and its stub for tests.
// Usage: The driver talks only to ScreenDevice so tests can run without a
// real terminal.

package tty

import "github.com/gdamore/tcell/v2"

// ScreenDevice is the subset of tcell.Screen the driver needs.
type ScreenDevice interface {
	Init() error
	Fini()
	Size() (int, int)
	SetStyle(style tcell.Style)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	HideCursor()
	ShowCursor(x, y int)
	Show()
	Clear()
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
}

// TcellScreen adapts a tcell.Screen to ScreenDevice.
type TcellScreen struct {
	screen tcell.Screen
}

// NewTcellScreen wraps the provided screen.
func NewTcellScreen(screen tcell.Screen) *TcellScreen {
	return &TcellScreen{screen: screen}
}

func (s *TcellScreen) Init() error { return s.screen.Init() }

func (s *TcellScreen) Fini() { s.screen.Fini() }

func (s *TcellScreen) Size() (int, int) { return s.screen.Size() }

func (s *TcellScreen) SetStyle(style tcell.Style) { s.screen.SetStyle(style) }

func (s *TcellScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	s.screen.SetContent(x, y, mainc, combc, style)
}

func (s *TcellScreen) HideCursor() { s.screen.HideCursor() }

func (s *TcellScreen) ShowCursor(x, y int) { s.screen.ShowCursor(x, y) }

func (s *TcellScreen) Show() { s.screen.Show() }

func (s *TcellScreen) Clear() { s.screen.Clear() }

func (s *TcellScreen) PollEvent() tcell.Event { return s.screen.PollEvent() }

func (s *TcellScreen) PostEvent(ev tcell.Event) error { return s.screen.PostEvent(ev) }

// Underlying exposes the wrapped tcell.Screen for code paths that still
// need direct access.
func (s *TcellScreen) Underlying() tcell.Screen { return s.screen }
