// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"envsync-cli/internal/issue"
	"envsync-cli/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "envsync"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variables overriding config keys,
	// e.g. ENVSYNC_CONTAINER_ENGINE or ENVSYNC_SECRET_VARIABLE.
	EnvPrefix = "ENVSYNC"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the envsync configuration directory: %APPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_CONFIG_HOME (default
// ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path of the user config file inside ConfigDir.
func ConfigFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("schema", defaults.Schema)
	v.SetDefault("env_files", defaults.EnvFiles)
	v.SetDefault("container_engine", defaults.ContainerEngine)
	v.SetDefault("services.containers", defaults.Services.Containers)
	v.SetDefault("pki.command", defaults.PKI.Command)
	v.SetDefault("pki.key_name", defaults.PKI.KeyName)
	v.SetDefault("pki.pty", defaults.PKI.PTY)
	v.SetDefault("secret.variable", defaults.Secret.Variable)
	v.SetDefault("secret.length", defaults.Secret.Length)
	v.SetDefault("save.missing_variable", defaults.Save.MissingVariable)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions resolves the config file (the explicit path, then ConfigDir,
// then ./config.cue), merges it over the defaults and validates the result.
// It returns the path of the file that was loaded, or "" when only defaults
// and environment overrides apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'envsync config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Relative paths written in a config file are relative to that file.
	if resolvedPath != "" {
		base := filepath.Dir(resolvedPath)
		if v.InConfig("schema") {
			cfg.Schema = resolveRelative(base, cfg.Schema)
		}
		if v.InConfig("env_files") {
			for i := range cfg.EnvFiles {
				cfg.EnvFiles[i].Path = resolveRelative(base, cfg.EnvFiles[i].Path)
			}
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Give every env_files entry a unique key").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file against #Config and merges the decoded
// map into v. Concrete(false) because every config field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithFormat(cueutil.FormatCUE),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// validate runs IsValid and the checks CUE cannot express.
func validate(cfg *Config) error {
	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	return validateEnvFiles(cfg.EnvFiles)
}

// validateEnvFiles rejects duplicate logical keys.
func validateEnvFiles(entries []EnvFileEntry) error {
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if first, exists := seen[entry.Key]; exists {
			return fmt.Errorf("env_files[%d]: duplicate key %q (same as env_files[%d])", i, entry.Key, first)
		}
		seen[entry.Key] = i
	}
	return nil
}

func resolveRelative(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file if none exists and
// returns its path.
func CreateDefaultConfig() (string, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", err
	}

	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := Save(DefaultConfig()); err != nil {
		return "", err
	}
	return cfgPath, nil
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// envsync configuration file\n")
	sb.WriteString("// Relative paths are resolved against the directory of this file.\n\n")

	fmt.Fprintf(&sb, "schema: %q\n", cfg.Schema)

	sb.WriteString("\nenv_files: [\n")
	for _, entry := range cfg.EnvFiles {
		fmt.Fprintf(&sb, "\t{key: %q, path: %q},\n", entry.Key, entry.Path)
	}
	sb.WriteString("]\n")

	fmt.Fprintf(&sb, "\ncontainer_engine: %q\n", cfg.ContainerEngine)

	sb.WriteString("\nservices: {\n\tcontainers: [")
	for i, name := range cfg.Services.Containers {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", name)
	}
	sb.WriteString("]\n}\n")

	sb.WriteString("\npki: {\n")
	fmt.Fprintf(&sb, "\tcommand:  %q\n", cfg.PKI.Command)
	fmt.Fprintf(&sb, "\tkey_name: %q\n", cfg.PKI.KeyName)
	fmt.Fprintf(&sb, "\tpty:      %v\n", cfg.PKI.PTY)
	sb.WriteString("}\n")

	sb.WriteString("\nsecret: {\n")
	fmt.Fprintf(&sb, "\tvariable: %q\n", cfg.Secret.Variable)
	fmt.Fprintf(&sb, "\tlength:   %d\n", cfg.Secret.Length)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nsave: missing_variable: %q\n", cfg.Save.MissingVariable)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
