// Package main hosts the cratedig CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the download session itself (run),
// configuration scaffolding and inspection (config), external tool checks
// (deps), session history (history), ad-hoc fingerprint checks (verify),
// and notification plumbing (notify). It centralizes configuration
// resolution so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
