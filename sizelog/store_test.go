// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizelog/store_test.go
// Summary: Exercises persistence and queries of size-change records.

package sizelog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/framegrace/texelframe/frame"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sizelog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(name string, at time.Time, cols int) frame.SizeChange {
	return frame.SizeChange{
		FrameName: name,
		At:        at,
		Mode:      frame.ResizeForce,
		Parameter: "test",
		OldCols:   80, OldLines: 24,
		NewCols: cols, NewLines: 24,
		OldNativeW: 80, OldNativeH: 24,
		NewNativeW: cols, NewNativeH: 24,
	}
}

func TestRecordAndQueryRoundtrip(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Minute)

	s.RecordSizeChange(sample("F1", base, 100))
	s.RecordSizeChange(sample("F2", base.Add(time.Second), 120))
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	recs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	// Newest first.
	if recs[0].FrameName != "F2" || recs[1].FrameName != "F1" {
		t.Fatalf("order = %s, %s", recs[0].FrameName, recs[1].FrameName)
	}
	if recs[0].NewCols != 120 || recs[0].Mode != "force" {
		t.Fatalf("record = %+v", recs[0])
	}
}

func TestForFrameFiltersByName(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()
	s.RecordSizeChange(sample("F1", base, 100))
	s.RecordSizeChange(sample("F2", base, 120))
	s.Flush()

	recs, err := s.ForFrame("F1", 10)
	if err != nil {
		t.Fatalf("for frame: %v", err)
	}
	if len(recs) != 1 || recs[0].FrameName != "F1" {
		t.Fatalf("records = %+v", recs)
	}
}

func TestInRangeBoundsQuery(t *testing.T) {
	s := openTestStore(t)
	base := time.Now()
	s.RecordSizeChange(sample("old", base.Add(-time.Hour), 90))
	s.RecordSizeChange(sample("mid", base, 100))
	s.RecordSizeChange(sample("new", base.Add(time.Hour), 110))
	s.Flush()

	recs, err := s.InRange(base.Add(-time.Minute), base.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	if len(recs) != 1 || recs[0].FrameName != "mid" {
		t.Fatalf("records = %+v", recs)
	}
}

func TestCloseFlushesPendingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizelog.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.RecordSizeChange(sample("F1", time.Now(), 100))
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recs, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records after reopen", len(recs))
	}
}
