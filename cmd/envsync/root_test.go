// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"envsync-cli/internal/config"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	if got := (&ExitError{Code: 2, Err: cause}).Error(); got != "boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError does not unwrap to its cause")
	}
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{}))
	for _, name := range []string{"edit", "show", "get", "set", "secret", "pki", "restart", "config"} {
		found, _, err := root.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("subcommand %q not registered (found %q, err %v)", name, found.Name(), err)
		}
	}
}

func TestMergeEnvFile(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	base := env.cfg.EnvFiles

	merged := mergeEnvFile(base, base[0])
	if len(merged) != 1 {
		t.Errorf("same key appended: %v", merged)
	}
	merged = mergeEnvFile(merged, config.EnvFileEntry{Key: "core", Path: "core.env"})
	if len(merged) != 2 || merged[1].Key != "core" {
		t.Errorf("new key not appended: %v", merged)
	}
	if len(base) != 1 {
		t.Errorf("mergeEnvFile modified its input: %v", base)
	}
}
