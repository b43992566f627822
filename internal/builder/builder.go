// SPDX-License-Identifier: MPL-2.0

// Package builder coordinates the build pipeline: open the base jar, stage
// a scratch workspace, resolve dependencies, and pack the output jar. The
// pipeline is strictly sequential; the scratch workspace is created once,
// owned exclusively by the coordinator, and removed on every exit path.
package builder

import (
	"context"
	"os"

	"jarsmith-cli/internal/issue"
	"jarsmith-cli/internal/jar"
	"jarsmith-cli/internal/topology"
	"jarsmith-cli/internal/venv"
	"jarsmith-cli/internal/workspace"

	"github.com/charmbracelet/log"
)

const (
	// StateStart is the initial state before any resource is touched.
	StateStart State = iota
	// StateBaseOpened indicates the base jar was opened and sanity-checked.
	StateBaseOpened
	// StateWorkspaceCreated indicates the scratch workspace exists on disk.
	StateWorkspaceCreated
	// StateValidated indicates the topology layout passed validation and
	// the environment toggle is resolved.
	StateValidated
	// StateStaged indicates the workspace holds the merged build tree.
	StateStaged
	// StateDependenciesResolved indicates dependency installation finished,
	// or was skipped because the isolated environment is unused.
	StateDependenciesResolved
	// StatePacked indicates the output jar was written.
	StatePacked
	// StateDone is the terminal success state.
	StateDone
	// StateAborted is the terminal failure state, reachable from any
	// non-terminal state.
	StateAborted
)

type (
	// State identifies where in the pipeline a build currently is.
	State int

	// Builder runs the build pipeline for one topology directory.
	// A Builder is single-use: once Run returns, the state is terminal.
	Builder struct {
		layout topology.Layout
		opts   topology.Options
		logger *log.Logger
		state  State
	}
)

// String returns a human-readable representation of the pipeline state.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateBaseOpened:
		return "base opened"
	case StateWorkspaceCreated:
		return "workspace created"
	case StateValidated:
		return "validated"
	case StateStaged:
		return "staged"
	case StateDependenciesResolved:
		return "dependencies resolved"
	case StatePacked:
		return "packed"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// New creates a Builder for the given layout and options. Paths inside
// opts must already be absolute; the toggle in opts may still be unset and
// is resolved during validation.
func New(layout topology.Layout, opts topology.Options) *Builder {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "builder",
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return &Builder{
		layout: layout,
		opts:   opts,
		logger: logger,
		state:  StateStart,
	}
}

// State returns the builder's current pipeline state.
func (b *Builder) State() State {
	return b.state
}

// Options returns the builder's options, including the environment toggle
// as resolved by validation.
func (b *Builder) Options() topology.Options {
	return b.opts
}

// Run drives the pipeline to completion. On success the output jar is the
// only artifact left behind; on failure the scratch workspace is removed
// and the error surfaces unchanged. The base jar handle is closed exactly
// once on every exit path.
func (b *Builder) Run(ctx context.Context) error {
	// Fail before any mutation when the destination is already taken. The
	// packer re-checks right before writing.
	if _, err := os.Stat(b.opts.OutputJar); err == nil {
		return b.abort(issue.New(issue.KindJar, "output jar already exists: %s", b.opts.OutputJar))
	}

	base, err := jar.Open(b.opts.BaseJar)
	if err != nil {
		return b.abort(err)
	}
	defer base.Close()
	b.advance(StateBaseOpened)

	scratch, err := workspace.NewScratch()
	if err != nil {
		return b.abort(err)
	}
	defer scratch.Remove()
	b.advance(StateWorkspaceCreated)

	if err := topology.Validate(b.layout, &b.opts); err != nil {
		return b.abort(err)
	}
	b.advance(StateValidated)

	if err := workspace.Stage(base, scratch, b.layout, b.opts.UseVenv.Enabled()); err != nil {
		return b.abort(err)
	}
	b.advance(StateStaged)

	if b.opts.UseVenv.Enabled() {
		installer := venv.New(scratch.Resources(), b.layout.Manifest, b.opts, b.logger)
		if err := installer.Provision(ctx); err != nil {
			return b.abort(err)
		}
	}
	b.advance(StateDependenciesResolved)

	if err := jar.Pack(scratch.Root(), b.opts.OutputJar); err != nil {
		return b.abort(err)
	}
	b.advance(StatePacked)

	b.advance(StateDone)
	return nil
}

// advance moves the pipeline to the next state.
func (b *Builder) advance(next State) {
	b.logger.Debug("pipeline state change", "from", b.state, "to", next)
	b.state = next
}

// abort records the terminal failure state and hands the error back.
func (b *Builder) abort(err error) error {
	b.logger.Debug("pipeline aborted", "state", b.state, "error", err)
	b.state = StateAborted
	return err
}
