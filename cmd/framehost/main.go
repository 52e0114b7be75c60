// Copyright © 2025 Texelframe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/framehost/main.go
// Summary: Entry point for the framehost binary.

package main

func main() {
	Execute()
}
