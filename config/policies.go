// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/policies.go
// Summary: Maps config keys onto engine policy values.

package config

import (
	"log"

	"github.com/framegrace/texelframe/frame"
)

// Policies builds the engine policy set from the system config. Unknown
// values fall back to the defaults and are logged once per load.
func Policies() frame.Policies {
	cfg := System()
	p := frame.DefaultPolicies()

	switch v := cfg.GetString("resize", "inhibit-implied", "after-initial"); v {
	case "never":
		p.InhibitImplied = frame.ImpliedAllowed
	case "after-initial":
		p.InhibitImplied = frame.ImpliedInhibited
	case "always":
		p.InhibitImplied = frame.ImpliedForce
	default:
		log.Printf("Config: unknown resize.inhibit-implied %q, using after-initial", v)
	}

	switch v := cfg.GetString("frames", "iconify-child", "root"); v {
	case "none":
		p.IconifyChild = frame.IconifyChildNop
	case "root":
		p.IconifyChild = frame.IconifyChildRoot
	case "invisible":
		p.IconifyChild = frame.IconifyChildInvisible
	default:
		log.Printf("Config: unknown frames.iconify-child %q, using root", v)
	}

	if depth := cfg.GetInt("history", "depth", p.HistoryDepth); depth > 0 {
		p.HistoryDepth = depth
	}
	return p
}

// HistoryPersist reports whether size-change records should be persisted.
func HistoryPersist() bool {
	return System().GetBool("history", "persist", false)
}

// HistoryDBPath returns the path of the size-change database.
func HistoryDBPath() string {
	if path := System().GetString("history", "db", ""); path != "" {
		return path
	}
	return defaultHistoryDBPath()
}
