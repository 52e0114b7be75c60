// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/framehost/run.go
// Summary: The interactive run command: wires engine, config, sizelog and
// the tty driver together.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/framegrace/texelframe/config"
	"github.com/framegrace/texelframe/frame"
	"github.com/framegrace/texelframe/sizelog"
	"github.com/framegrace/texelframe/tty"
)

var runLogFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive frame host on this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHost()
	},
}

func init() {
	runCmd.Flags().StringVar(&runLogFile, "log", "", "append engine logs to this file (default: discard)")
	rootCmd.AddCommand(runCmd)
}

func runHost() error {
	// The screen owns the tty; logs must go elsewhere.
	logger := log.New(os.Stderr, "", 0)
	if runLogFile != "" {
		f, err := os.OpenFile(runLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags)
	} else {
		devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err == nil {
			defer devnull.Close()
			logger = log.New(devnull, "", 0)
		}
	}

	engine := frame.NewEngine(nil)
	engine.SetLogger(logger)
	engine.SetPolicies(config.Policies())

	if config.HistoryPersist() {
		store, err := sizelog.Open(config.HistoryDBPath())
		if err != nil {
			return fmt.Errorf("open size log: %w", err)
		}
		defer store.Close()
		engine.SetRecorder(store)
	}

	watcher, err := config.Watch()
	if err != nil {
		logger.Printf("framehost: config watch unavailable: %v", err)
	} else {
		defer watcher.Close()
		watcher.OnChange(func(config.Config) {
			engine.SetPolicies(config.Policies())
		})
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	driver := tty.NewDriver(engine, tty.NewTcellScreen(screen), os.Getenv("TERM"))
	driver.SetLogger(logger)

	root, err := engine.NewFrame(driver.Terminal(), frame.FrameOptions{})
	if err != nil {
		return fmt.Errorf("create root frame: %w", err)
	}
	if err := engine.Select(root); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	driver.OnKey = func(ev *tcell.EventKey) {
		defer driver.Render()
		sel := engine.SelectedFrame()
		switch {
		case ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			cancel()
		case ev.Rune() == 'n':
			top := driver.Terminal().TopFrame()
			child, err := engine.NewFrameWithoutMinibuffer(driver.Terminal(), nil, frame.FrameOptions{
				Parent: top,
				Cols:   top.Cols / 2,
				Lines:  top.Lines / 2,
			})
			if err != nil {
				logger.Printf("framehost: new frame: %v", err)
				return
			}
			n := len(engine.Children(top))
			engine.MoveFrame(child, 2*n, n)
			engine.Set(child, frame.ParamKeepRatio, true)
			engine.Select(child)
		case ev.Key() == tcell.KeyTab:
			engine.Select(engine.Next(sel, frame.CandidateFilter{Visible: true}))
		case ev.Rune() == 'd':
			if err := engine.Delete(sel, false); err != nil {
				logger.Printf("framehost: delete %s: %v", sel, err)
			}
		case ev.Rune() == 'i':
			if err := engine.MakeInvisible(sel, false); err != nil {
				logger.Printf("framehost: hide %s: %v", sel, err)
			}
		}
	}

	return driver.Run(ctx)
}
