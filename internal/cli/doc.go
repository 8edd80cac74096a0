// Package cli implements the countertop command-line interface.
//
// Each cobra command in commands.go delegates to a function in its own
// file. The commands are:
//
//	countertop watch       - Draw the table and keep it live
//	countertop check       - Validate config and preview the table
//	countertop init        - Write a starter countertop.yaml
//	countertop completion  - Shell completion scripts
//	countertop version     - Build information
//
// # Watch
//
// Watch is the long-running part. It validates the config, builds and draws
// the table once, and only then creates the sink, so no update can reach a
// cell before the first paint. Sources are started in a source.Session and
// routed to the sink. Address errors for the listener and the metrics
// server surface before anything is drawn.
//
// Watch talks to the screen through Display, so tests drive it against an
// in-memory table.Screen.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command. Watch flags override the matching config keys for one run.
package cli
