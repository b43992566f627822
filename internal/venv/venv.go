// SPDX-License-Identifier: MPL-2.0

// Package venv provisions the isolated Python environment for a build.
//
// Provisioning shells out twice: once to the environment-creation tool and
// once to the package installer inside the environment it just created.
// Both subprocesses run with the staged resources directory as working
// directory, so the environment lands inside the tree that gets packed.
// This is the only package that starts subprocesses; the environment
// directory is removed implicitly when the scratch workspace is deleted.
package venv

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"jarsmith-cli/internal/issue"
	"jarsmith-cli/internal/topology"

	"github.com/charmbracelet/log"
)

const (
	// createTool is the external environment-creation command, resolved via
	// PATH.
	createTool = "virtualenv"
	// installTool is the package installer inside a created environment.
	installTool = "pip"
)

// Installer runs the two provisioning subprocesses for one build.
type Installer struct {
	dir      string
	manifest string
	opts     topology.Options
	logger   *log.Logger
}

// New creates an Installer rooted at the staged resources directory.
// manifest is the absolute path of the dependency manifest. A nil logger
// silences debug output.
func New(resourcesDir, manifest string, opts topology.Options, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installer{
		dir:      resourcesDir,
		manifest: manifest,
		opts:     opts,
		logger:   logger,
	}
}

// Provision creates the isolated environment and installs the manifest's
// dependencies into it. A subprocess exiting non-zero maps to a
// dependencies-kind error; a tool that cannot be started at all surfaces
// its raw error unclassified. No cleanup happens here.
func (i *Installer) Provision(ctx context.Context) error {
	if err := i.run(ctx, createArgs(i.opts)); err != nil {
		if isExitFailure(err) {
			return issue.New(issue.KindDependencies, "failed to create isolated environment")
		}
		return err
	}

	if err := i.run(ctx, installArgs(i.manifest, i.opts)); err != nil {
		if isExitFailure(err) {
			return issue.New(issue.KindDependencies,
				"failed to install dependencies: rerun with --verbose for details")
		}
		return err
	}

	return nil
}

// run executes one argv with the installer's I/O policy: the resources
// directory as working directory, stderr folded into stdout, and output
// discarded unless verbose is set.
func (i *Installer) run(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = i.dir

	var out io.Writer = io.Discard
	if i.opts.Verbose {
		out = os.Stdout
	}
	cmd.Stdout = out
	cmd.Stderr = out

	i.logger.Debug("running installer subprocess", "argv", strings.Join(argv, " "), "dir", i.dir)
	return cmd.Run()
}

// createArgs assembles the environment-creation argv.
func createArgs(opts topology.Options) []string {
	args := []string{createTool, topology.VenvDirName}
	if opts.SystemSitePackages {
		args = append(args, "--system-site-packages")
	}
	return args
}

// installArgs assembles the dependency-install argv. The installer binary
// lives inside the environment created a moment earlier, so its path is
// relative to the resources directory the subprocess runs in.
func installArgs(manifest string, opts topology.Options) []string {
	args := []string{
		filepath.Join(topology.VenvDirName, "bin", installTool),
		"install", "-r", manifest,
	}
	if opts.IndexURL != "" {
		args = append(args, "-i", opts.IndexURL)
	}
	if opts.PipLog != "" {
		args = append(args, "--log", opts.PipLog)
	}
	return args
}

// isExitFailure reports whether err is a subprocess exiting non-zero, as
// opposed to the tool failing to start at all.
func isExitFailure(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
