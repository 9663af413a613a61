// Package main hosts the segprep CLI entrypoint and command graph.
//
// Each pipeline stage (merge, normalize, labels, split) is its own command,
// and "run" chains them using the configured directory layout. Commands share
// configuration loading, logger construction, output locking and result
// rendering through commandContext so the stage commands only translate flags
// into calls on the internal packages.
package main
