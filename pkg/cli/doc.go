// Package cli implements the protobridge command line interface.
//
// The root command dispatches to subcommands: generate runs a single
// compilation of the bridge artifacts, watch keeps regenerating them as the
// configuration or message definitions change on disk.
package cli
