// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestEnumIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func() (bool, []error)
		want     bool
		sentinel error
	}{
		{"docker", ContainerEngineDocker.IsValid, true, nil},
		{"podman", ContainerEnginePodman.IsValid, true, nil},
		{"unknown engine", ContainerEngine("lxc").IsValid, false, ErrInvalidContainerEngine},
		{"auto scheme", ColorSchemeAuto.IsValid, true, nil},
		{"empty scheme", ColorScheme("").IsValid, false, ErrInvalidColorScheme},
		{"append mode", MissingVariableAppend.IsValid, true, nil},
		{"skip mode", MissingVariableSkip.IsValid, true, nil},
		{"unknown mode", MissingVariableMode("ignore").IsValid, false, ErrInvalidMissingVariableMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.validate()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if tt.sentinel != nil && (len(errs) != 1 || !errors.Is(errs[0], tt.sentinel)) {
				t.Errorf("expected one error wrapping %v, got %v", tt.sentinel, errs)
			}
			if tt.want && len(errs) != 0 {
				t.Errorf("valid value returned errors: %v", errs)
			}
		})
	}
}

func TestParseEnvFileEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    EnvFileEntry
		wantErr bool
	}{
		{"mc=mojaloop-connector.env", EnvFileEntry{Key: "mc", Path: "mojaloop-connector.env"}, false},
		{" core = /opt/itk/core.env ", EnvFileEntry{Key: "core", Path: "/opt/itk/core.env"}, false},
		{"mc=a=b.env", EnvFileEntry{Key: "mc", Path: "a=b.env"}, false},
		{"mojaloop-connector.env", EnvFileEntry{}, true},
		{"=x.env", EnvFileEntry{}, true},
		{"mc=", EnvFileEntry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseEnvFileEntry(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEnvFileEntry) {
					t.Errorf("expected ErrInvalidEnvFileEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseEnvFileEntry(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.want.Key+"="+tt.want.Path {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("default config is invalid: %v", errs)
	}

	cfg := DefaultConfig()
	cfg.ContainerEngine = "lxc"
	cfg.Secret.Length = 0
	cfg.EnvFiles = append(cfg.EnvFiles, EnvFileEntry{Key: "", Path: "x.env"})

	valid, errs := cfg.IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", valid, errs)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) || !errors.Is(errs[0], ErrInvalidConfig) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want 3", cfgErr.FieldErrors)
	}
}
