// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/framehost/root.go
// Summary: Cobra root command for framehost.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "framehost",
	Short: "Interactive host for the texelframe engine",
	Long: `Framehost runs the texelframe frame engine on the controlling
terminal. The top frame fills the screen; child frames are drawn as
bordered boxes on top of it.

Keys in the running host:
  n        create a child frame
  Tab      select the next frame
  d        delete the selected frame
  i        hide the selected frame
  q / ^C   quit

Use 'framehost history' to inspect persisted geometry negotiations.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
