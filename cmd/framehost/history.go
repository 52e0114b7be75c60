// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/framehost/history.go
// Summary: The history command: prints persisted geometry negotiations.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelframe/config"
	"github.com/framegrace/texelframe/sizelog"
)

var (
	historyLimit int
	historyFrame string
	historyDB    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show persisted size-change records",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := historyDB
		if path == "" {
			path = config.HistoryDBPath()
		}
		store, err := sizelog.Open(path)
		if err != nil {
			return fmt.Errorf("open size log: %w", err)
		}
		defer store.Close()

		var recs []sizelog.Record
		if historyFrame != "" {
			recs, err = store.ForFrame(historyFrame, historyLimit)
		} else {
			recs, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no records")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tFRAME\tMODE\tPARAM\tSIZE\tNATIVE\tFLAGS")
		for _, r := range recs {
			flags := ""
			if r.Requested {
				flags += "requested "
			}
			if r.Pretend {
				flags += "pretend"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d -> %dx%d\t%dx%d -> %dx%d\t%s\n",
				r.At.Format("15:04:05.000"), r.FrameName, r.Mode, r.Parameter,
				r.OldCols, r.OldLines, r.NewCols, r.NewLines,
				r.OldNativeW, r.OldNativeH, r.NewNativeW, r.NewNativeH, flags)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum records to print")
	historyCmd.Flags().StringVar(&historyFrame, "frame", "", "only records for this frame name")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "database path (default: from config)")
	rootCmd.AddCommand(historyCmd)
}
