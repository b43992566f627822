// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the jarsmith command-line interface: flag parsing,
// configuration precedence, the build entry point that hands a resolved
// layout and options to the pipeline, and the config management
// subcommands.
package cmd
