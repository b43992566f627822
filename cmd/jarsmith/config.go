// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jarsmith-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `jarsmith config` command tree. Values set
// here become the durable defaults for the matching build flags.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jarsmith configuration",
		Long: `Manage jarsmith configuration.

Configuration is stored in:
  - Linux: ~/.config/jarsmith/config.cue
  - macOS: ~/Library/Application Support/jarsmith/config.cue
  - Windows: %APPDATA%\jarsmith\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), cmd.OutOrStdout())
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, w io.Writer) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	// Derive the config file path from the standard config directory; the
	// provider does not report which source it resolved.
	cfgPath := ""
	if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
		cfgPath = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	}
	if cfgPath != "" && fileExistsCheck(cfgPath) {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("base_jar"), SuccessStyle.Render(cfg.BaseJar.String()))
	if cfg.IndexURL == "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("index_url"), SubtitleStyle.Render("(installer default)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("index_url"), SuccessStyle.Render(cfg.IndexURL.String()))
	}
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("system_site_packages"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.SystemSitePackages)))
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("verbose"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.Verbose)))

	return nil
}

func initConfig(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

func setConfigValue(ctx context.Context, w io.Writer, key, value string) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "base_jar":
		// The schema rejects an empty base_jar, so an empty value here would
		// write a config file that can never load again.
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("invalid base_jar: value must not be empty")
		}
		cfg.BaseJar = config.FilesystemPath(value)

	case "index_url":
		// Empty clears the override; the generated file omits the field.
		u := config.IndexURL(value)
		if valid, errs := u.IsValid(); !valid {
			return errs[0]
		}
		cfg.IndexURL = u

	case "system_site_packages":
		cfg.SystemSitePackages = value == "true" || value == "1"

	case "verbose":
		cfg.Verbose = value == "true" || value == "1"

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: base_jar, index_url, system_site_packages, verbose", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(w, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func dumpConfig(ctx context.Context, w io.Writer) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	fmt.Fprint(w, config.GenerateCUE(cfg))
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
