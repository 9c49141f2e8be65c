// Package main hosts the clipforge CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the daemon, the synchronous
// split and karaoke flows, output catalog inspection, and configuration
// scaffolding. It centralizes configuration resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
package main
