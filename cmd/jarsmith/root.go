// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jarsmith-cli/internal/builder"
	"jarsmith-cli/internal/config"
	"jarsmith-cli/internal/topology"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// baseJar is the base archive the topology is layered onto.
	baseJar string
	// outputJar overrides the computed output path.
	outputJar string
	// useEnv / noUseEnv form the tri-state environment toggle. Neither flag
	// given means the manifest decides.
	useEnv   bool
	noUseEnv bool
	// indexURL overrides the installer's default package index.
	indexURL string
	// systemPkgs exposes system-wide packages inside the environment.
	systemPkgs bool
	// pipLog captures a verbose install log.
	pipLog string
	// verbose enables subprocess passthrough and debug logging.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	// rootCmd is the build command: jarsmith builds exactly one jar per run.
	// Management subcommands are registered in init.
	rootCmd = &cobra.Command{
		Use:   "jarsmith [flags] TOPOLOGY_DIRECTORY",
		Short: "Assemble a deployable topology jar",
		Long: TitleStyle.Render("jarsmith") + SubtitleStyle.Render(" - Assemble a deployable topology jar") + `

jarsmith merges a prebuilt base jar with a topology directory containing
a topology.yaml descriptor and supporting source files. When the directory
declares third-party dependencies in a requirements.txt manifest, they are
installed into an isolated environment packed inside the archive, so the
output jar is self-contained.

The descriptor must sit at the top level of the topology directory. A
manifest turns environment provisioning on by default; --use-env and
--no-use-env override that decision either way.

` + SubtitleStyle.Render("Examples:") + `
  jarsmith myjob/                Build myjob.jar in the current directory
  jarsmith -o out/myjob.jar myjob/    Build to an explicit path
  jarsmith --no-use-env myjob/   Skip dependency installation
  jarsmith -v myjob/             Show virtualenv and pip output`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
)

// runSettings is the flat flag/config view of one run before paths are
// absolutized into topology.Options.
type runSettings struct {
	baseJar    string
	outputJar  string
	envToggle  topology.Toggle
	indexURL   string
	systemPkgs bool
	pipLog     string
	verbose    bool
}

func init() {
	rootCmd.Flags().StringVarP(&baseJar, "base", "b", "minimal.jar", "base jar path")
	rootCmd.Flags().StringVarP(&outputJar, "out", "o", "", "output jar path (default <topology-dir>.jar)")
	rootCmd.Flags().BoolVar(&useEnv, "use-env", false, "provision an isolated environment for dependencies")
	rootCmd.Flags().BoolVar(&noUseEnv, "no-use-env", false, "skip isolated environment provisioning")
	rootCmd.Flags().StringVarP(&indexURL, "index-url", "i", "", "package index URL passed to the installer")
	rootCmd.Flags().BoolVarP(&systemPkgs, "system-packages", "s", false, "give the environment access to system-wide packages")
	rootCmd.Flags().StringVar(&pipLog, "log", "", "write a verbose install log to this path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show subprocess output and debug logging")
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/jarsmith/config.cue)")

	rootCmd.MarkFlagsMutuallyExclusive("use-env", "no-use-env")

	// Add subcommands
	rootCmd.AddCommand(newConfigCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// runBuild resolves flags and configuration into pipeline inputs and runs
// the build. Every failure surfaces as one program-prefixed stderr line.
func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings := runSettings{
		baseJar:    baseJar,
		outputJar:  outputJar,
		envToggle:  envToggle(cmd),
		indexURL:   indexURL,
		systemPkgs: systemPkgs,
		pipLog:     pipLog,
		verbose:    verbose,
	}

	cfg, err := loadRunConfig(ctx, cmd)
	if err != nil {
		return fail(cmd, err)
	}
	applyConfig(cfg, cmd.Flags().Changed, &settings)

	layout, opts, err := resolveRun(args[0], settings)
	if err != nil {
		return fail(cmd, err)
	}

	if err := builder.New(layout, opts).Run(ctx); err != nil {
		return fail(cmd, err)
	}
	return nil
}

// envToggle derives the tri-state environment toggle from flag presence.
// Validation resolves ToggleUnset from manifest presence later.
func envToggle(cmd *cobra.Command) topology.Toggle {
	switch {
	case cmd.Flags().Changed("use-env"):
		return topology.ToggleEnabled
	case cmd.Flags().Changed("no-use-env"):
		return topology.ToggleDisabled
	default:
		return topology.ToggleUnset
	}
}

// loadRunConfig loads the config file. An explicit --config path must load
// cleanly; failures on the default lookup paths degrade to built-in defaults
// with a warning so a broken or missing config never blocks a build.
func loadRunConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{
		ConfigFilePath: config.FilesystemPath(cfgFile),
	})
	if err == nil {
		return cfg, nil
	}
	if cfgFile != "" {
		return nil, err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+err.Error())
	return config.DefaultConfig(), nil
}

// applyConfig fills in settings the user left untouched from the loaded
// config file. Explicit flags always win over config values.
func applyConfig(cfg *config.Config, changed func(string) bool, s *runSettings) {
	if !changed("base") && cfg.BaseJar != "" {
		s.baseJar = string(cfg.BaseJar)
	}
	if !changed("index-url") && cfg.IndexURL != "" {
		s.indexURL = string(cfg.IndexURL)
	}
	if !changed("system-packages") && cfg.SystemSitePackages {
		s.systemPkgs = true
	}
	if !changed("verbose") && cfg.Verbose {
		s.verbose = true
	}
}

// resolveRun absolutizes every path involved in the run and derives the
// default output name from the topology directory basename.
func resolveRun(topologyDir string, s runSettings) (topology.Layout, topology.Options, error) {
	dir, err := filepath.Abs(topologyDir)
	if err != nil {
		return topology.Layout{}, topology.Options{}, err
	}

	base, err := filepath.Abs(s.baseJar)
	if err != nil {
		return topology.Layout{}, topology.Options{}, err
	}

	out := s.outputJar
	if out == "" {
		out = filepath.Base(dir) + ".jar"
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return topology.Layout{}, topology.Options{}, err
	}

	logPath := s.pipLog
	if logPath != "" {
		logPath, err = filepath.Abs(logPath)
		if err != nil {
			return topology.Layout{}, topology.Options{}, err
		}
	}

	opts := topology.Options{
		UseVenv:            s.envToggle,
		SystemSitePackages: s.systemPkgs,
		IndexURL:           s.indexURL,
		PipLog:             logPath,
		Verbose:            s.verbose,
		BaseJar:            base,
		OutputJar:          out,
	}
	return topology.NewLayout(dir), opts, nil
}

// fail renders err on stderr as "<program>: error: <message>" and converts
// it into a bare non-zero exit.
func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %v\n", prog(), err)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1}
}

// prog returns the program name used as the error-line prefix.
func prog() string {
	return filepath.Base(os.Args[0])
}
