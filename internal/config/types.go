// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEnginePodman restarts services with the podman CLI.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker restarts services with the docker CLI.
	ContainerEngineDocker ContainerEngine = "docker"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MissingVariableError fails a save that changes an item whose variable is
	// not present in its env file.
	MissingVariableError MissingVariableMode = "error"
	// MissingVariableAppend appends the variable to the end of its env file.
	MissingVariableAppend MissingVariableMode = "append"
	// MissingVariableSkip leaves such items unwritten.
	MissingVariableSkip MissingVariableMode = "skip"

	// DefaultSecretLength is the length of generated ILP secrets.
	DefaultSecretLength = 32
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMissingVariableMode is returned when a MissingVariableMode value is not recognized.
	ErrInvalidMissingVariableMode = errors.New("invalid missing variable mode")
	// ErrInvalidEnvFileEntry is the sentinel error wrapped by InvalidEnvFileEntryError.
	ErrInvalidEnvFileEntry = errors.New("invalid env file entry")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container CLI restarts services.
	ContainerEngine string

	// InvalidContainerEngineError wraps ErrInvalidContainerEngine.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// MissingVariableMode selects what a save does for a changed item whose
	// variable has no line in its env file. Defined locally to keep config
	// free of engine imports; the CLI converts it at the boundary.
	MissingVariableMode string

	// InvalidMissingVariableModeError wraps ErrInvalidMissingVariableMode.
	InvalidMissingVariableModeError struct {
		Value MissingVariableMode
	}

	// InvalidEnvFileEntryError is returned when an EnvFileEntry has an empty
	// key or path, or a key containing '='.
	InvalidEnvFileEntryError struct {
		Entry  EnvFileEntry
		Reason string
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// EnvFileEntry binds a logical file key used by schema items to a path.
	EnvFileEntry struct {
		Key  string `json:"key" mapstructure:"key"`
		Path string `json:"path" mapstructure:"path"`
	}

	// Config holds the application configuration.
	Config struct {
		// Schema is the path of the schema document.
		Schema string `json:"schema" mapstructure:"schema"`
		// EnvFiles lists the env files the schema items refer to.
		EnvFiles []EnvFileEntry `json:"env_files" mapstructure:"env_files"`
		// ContainerEngine is "docker" or "podman".
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		Services        ServicesConfig  `json:"services" mapstructure:"services"`
		PKI             PKIConfig       `json:"pki" mapstructure:"pki"`
		Secret          SecretConfig    `json:"secret" mapstructure:"secret"`
		Save            SaveConfig      `json:"save" mapstructure:"save"`
		UI              UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// ServicesConfig lists the containers restarted after a save.
	ServicesConfig struct {
		Containers []string `json:"containers" mapstructure:"containers"`
	}

	// PKIConfig configures the external certificate and key tool.
	PKIConfig struct {
		// Command is split into argv with shell word rules.
		Command string `json:"command" mapstructure:"command"`
		// KeyName is the JWS signing key file name passed to the tool.
		KeyName string `json:"key_name" mapstructure:"key_name"`
		// PTY runs the tool on a pseudo-terminal so its output is line-buffered.
		PTY bool `json:"pty" mapstructure:"pty"`
	}

	// SecretConfig configures ILP secret generation.
	SecretConfig struct {
		// Variable is the env variable the secret is written to.
		Variable string `json:"variable" mapstructure:"variable"`
		Length   int    `json:"length" mapstructure:"length"`
	}

	// SaveConfig configures the save behaviour.
	SaveConfig struct {
		MissingVariable MissingVariableMode `json:"missing_variable" mapstructure:"missing_variable"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidMissingVariableModeError.
func (e *InvalidMissingVariableModeError) Error() string {
	return fmt.Sprintf("invalid missing variable mode %q (valid: error, append, skip)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidMissingVariableModeError) Unwrap() error { return ErrInvalidMissingVariableMode }

func (m MissingVariableMode) String() string { return string(m) }

// IsValid returns whether the mode is one of error, append or skip.
func (m MissingVariableMode) IsValid() (bool, []error) {
	switch m {
	case MissingVariableError, MissingVariableAppend, MissingVariableSkip:
		return true, nil
	default:
		return false, []error{&InvalidMissingVariableModeError{Value: m}}
	}
}

// String renders the entry in its flag form, key=path.
func (e EnvFileEntry) String() string { return e.Key + "=" + e.Path }

// IsValid checks that key and path are set and the key has no '='.
func (e EnvFileEntry) IsValid() (bool, []error) {
	switch {
	case strings.TrimSpace(e.Key) == "":
		return false, []error{&InvalidEnvFileEntryError{Entry: e, Reason: "empty key"}}
	case strings.Contains(e.Key, "="):
		return false, []error{&InvalidEnvFileEntryError{Entry: e, Reason: "key contains '='"}}
	case strings.TrimSpace(e.Path) == "":
		return false, []error{&InvalidEnvFileEntryError{Entry: e, Reason: "empty path"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvFileEntryError.
func (e *InvalidEnvFileEntryError) Error() string {
	return fmt.Sprintf("invalid env file entry %q: %s", e.Entry.String(), e.Reason)
}

// Unwrap returns ErrInvalidEnvFileEntry for errors.Is() compatibility.
func (e *InvalidEnvFileEntryError) Unwrap() error { return ErrInvalidEnvFileEntry }

// ParseEnvFileEntry parses the key=path form used by the --env-file flag.
func ParseEnvFileEntry(s string) (EnvFileEntry, error) {
	key, path, ok := strings.Cut(s, "=")
	entry := EnvFileEntry{Key: strings.TrimSpace(key), Path: strings.TrimSpace(path)}
	if !ok {
		return entry, &InvalidEnvFileEntryError{Entry: entry, Reason: "expected key=path"}
	}
	if valid, errs := entry.IsValid(); !valid {
		return entry, errs[0]
	}
	return entry, nil
}

// IsValid validates every enum field, every env file entry and the secret length.
// Duplicate keys are reported by validateEnvFiles during loading.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Save.MissingVariable.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, entry := range c.EnvFiles {
		if valid, fieldErrs := entry.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Secret.Length <= 0 {
		errs = append(errs, fmt.Errorf("secret.length must be positive, got %d", c.Secret.Length))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration, matching the layout of an
// ITK mojaloop-connector deployment.
func DefaultConfig() *Config {
	return &Config{
		Schema:          "itkschema.yaml",
		EnvFiles:        []EnvFileEntry{{Key: "mc", Path: "mojaloop-connector.env"}},
		ContainerEngine: ContainerEngineDocker,
		Services: ServicesConfig{
			Containers: []string{"itk-mojaloop-connector", "itk-core-connector", "itk-redis"},
		},
		PKI: PKIConfig{
			Command: "python3 -u ./pkitools.py",
			KeyName: "jwssigningkey.pem",
		},
		Secret: SecretConfig{
			Variable: "ILP_SECRET",
			Length:   DefaultSecretLength,
		},
		Save: SaveConfig{
			MissingVariable: MissingVariableError,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
