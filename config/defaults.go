// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the system configuration file.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("resize", Section{
		"inhibit-implied": "after-initial",
	})
	cfg.RegisterDefaults("frames", Section{
		"iconify-child": "root",
	})
	cfg.RegisterDefaults("history", Section{
		"depth":   100,
		"persist": false,
		"db":      "",
	})
}

func defaultSystemConfig() Config {
	cfg := make(Config)
	applySystemDefaults(cfg)
	return cfg
}
