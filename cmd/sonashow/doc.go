// Package main hosts the SonaShow CLI entrypoint and command graph.
//
// The Cobra command tree runs the web daemon (serve) and exposes one-shot
// versions of the engine operations for terminal use: a discovery round
// printed as a table, a single add, the Sonarr library listing, id cache
// maintenance, and configuration scaffolding. Configuration and logger setup
// live in commandContext so subcommands stay declarative.
package main
