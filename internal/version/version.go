/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package version carries the application version string shared by the CLI,
// logging and crash reports.
package version

// Version is the semantic version of the application. Overridable at build
// time via -ldflags "-X companionkeeper/internal/version.Version=...".
var Version = "0.2.0-dev"

// String returns a human-readable version line.
func String() string {
	return "Companion Keeper " + Version
}
