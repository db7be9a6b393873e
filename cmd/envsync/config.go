// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"envsync-cli/internal/config"
)

// configKeys lists the keys accepted by 'config set'.
var configKeys = []string{
	"schema",
	"container_engine",
	"pki.command",
	"pki.key_name",
	"pki.pty",
	"secret.variable",
	"secret.length",
	"save.missing_variable",
	"ui.color_scheme",
	"ui.verbose",
}

// newConfigCommand creates the `envsync config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage envsync configuration",
		Long: `Manage envsync configuration.

Configuration is read from --config, then from:
  - Linux: ~/.config/envsync/config.cue
  - macOS: ~/Library/Application Support/envsync/config.cue
  - Windows: %APPDATA%\envsync\config.cue
and finally from ./config.cue. Any key can be overridden with an ENVSYNC_
environment variable, e.g. ENVSYNC_CONTAINER_ENGINE=podman.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := app.loadConfig(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			app.showConfig(cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(cmd, flags, fmt.Errorf("failed to create config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Configuration file: %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := config.ConfigFilePath()
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			fmt.Fprintln(app.stdout, cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the user configuration file",
		Long:  "Set a value in the user configuration file.\n\nValid keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.Config.Load(commandContext(cmd), config.LoadOptions{ConfigFilePath: flags.configPath})
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return app.fail(cmd, flags, err)
			}
			if err := config.Save(cfg); err != nil {
				return app.fail(cmd, flags, fmt.Errorf("failed to save config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), args[0], args[1])
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.loadConfig(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := a.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("schema"), valueStyle.Render(cfg.Schema))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("env_files"))
	if len(cfg.EnvFiles) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, f := range cfg.EnvFiles {
		fmt.Fprintf(w, "  - %s: %s\n", f.Key, valueStyle.Render(f.Path))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(cfg.ContainerEngine.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("services.containers"), valueStyle.Render(strings.Join(cfg.Services.Containers, ", ")))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("pki"))
	fmt.Fprintf(w, "  command: %s\n", valueStyle.Render(cfg.PKI.Command))
	fmt.Fprintf(w, "  key_name: %s\n", valueStyle.Render(cfg.PKI.KeyName))
	fmt.Fprintf(w, "  pty: %s\n", valueStyle.Render(strconv.FormatBool(cfg.PKI.PTY)))

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("secret"))
	fmt.Fprintf(w, "  variable: %s\n", valueStyle.Render(cfg.Secret.Variable))
	fmt.Fprintf(w, "  length: %s\n", valueStyle.Render(strconv.Itoa(cfg.Secret.Length)))

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("save.missing_variable"), valueStyle.Render(cfg.Save.MissingVariable.String()))

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))
}

// setConfigValue applies key=value to cfg and validates the result.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "schema":
		cfg.Schema = value
	case "container_engine":
		cfg.ContainerEngine = config.ContainerEngine(value)
	case "pki.command":
		cfg.PKI.Command = value
	case "pki.key_name":
		cfg.PKI.KeyName = value
	case "pki.pty":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		cfg.PKI.PTY = b
	case "secret.variable":
		cfg.Secret.Variable = value
	case "secret.length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		cfg.Secret.Length = n
	case "save.missing_variable":
		cfg.Save.MissingVariable = config.MissingVariableMode(value)
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		cfg.UI.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(configKeys, ", "))
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	return nil
}
