// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"envsync-cli/internal/config"
	"envsync-cli/internal/tui"
)

func TestShow(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "show"); err != nil {
		t.Fatalf("show: %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{
		"DFSP Details",
		"DFSP ID = dfsp1",
		"Enable JWS Signing = false",
		"[DFSP_ID at " + env.envPath + ":2]",
		"Peer Endpoint = localhost:4000",
		"[PEER_ENDPOINT in mc: not found, default]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestShow_Group(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "show", "non_repudiation"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(env.stdout.String(), "DFSP Details") {
		t.Errorf("show non_repudiation printed another group:\n%s", env.stdout)
	}

	env = newTestEnvironment(t)
	err := env.run(t, "show", "nope")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("show nope error = %v, want *ExitError", err)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "string item", args: []string{"get", "dfsp_details", "DFSP ID"}, want: "dfsp1\n"},
		{name: "bool item", args: []string{"get", "dfsp_details", "Enable JWS Signing"}, want: "false\n"},
		{name: "default", args: []string{"get", "non_repudiation", "Peer Endpoint"}, want: "localhost:4000\n"},
		{name: "unknown item", args: []string{"get", "dfsp_details", "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnvironment(t)
			err := env.run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !strings.Contains(env.stderr.String(), "Error:") {
					t.Errorf("stderr = %q, want a rendered error", env.stderr)
				}
				return
			}
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got := env.stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	err := env.run(t, "set",
		"dfsp_details", "DFSP ID", "dfsp2",
		"dfsp_details", "Enable JWS Signing", "TRUE")
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	want := strings.Replace(testEnv, "DFSP_ID=dfsp1", "DFSP_ID=dfsp2", 1)
	want = strings.Replace(want, "JWS_SIGN=false", "JWS_SIGN=true", 1)
	if got := env.readEnv(t); got != want {
		t.Errorf("env file =\n%s\nwant\n%s", got, want)
	}
	if !strings.Contains(env.stdout.String(), "Saved.") {
		t.Errorf("stdout = %q, want a save confirmation", env.stdout)
	}
}

func TestSet_DryRun(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "set", "--dry-run", "dfsp_details", "DFSP ID", "dfsp2"); err != nil {
		t.Fatalf("set --dry-run: %v", err)
	}

	if got := env.readEnv(t); got != testEnv {
		t.Errorf("dry run modified the env file:\n%s", got)
	}
	out := env.stdout.String()
	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "updated DFSP_ID") {
		t.Errorf("stdout = %q, want the planned change", out)
	}
}

func TestSet_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "incomplete triplet", args: []string{"set", "dfsp_details", "DFSP ID"}},
		{name: "unknown group", args: []string{"set", "nope", "DFSP ID", "x"}},
		{name: "unknown item", args: []string{"set", "dfsp_details", "nope", "x"}},
		{name: "invalid bool", args: []string{"set", "dfsp_details", "Enable JWS Signing", "maybe"}},
		{name: "value with newline", args: []string{"set", "dfsp_details", "DFSP ID", "a\nb"}},
		{name: "missing variable", args: []string{"set", "non_repudiation", "Peer Endpoint", "remote:4000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnvironment(t)
			if err := env.run(t, tt.args...); err == nil {
				t.Fatal("expected an error")
			}
			if got := env.readEnv(t); got != testEnv {
				t.Errorf("failed set modified the env file:\n%s", got)
			}
		})
	}
}

func TestSet_MissingVariableAppend(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.cfg.Save.MissingVariable = config.MissingVariableAppend

	if err := env.run(t, "set", "non_repudiation", "Peer Endpoint", "remote:4000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := env.readEnv(t); got != testEnv+"PEER_ENDPOINT=remote:4000\n" {
		t.Errorf("env file =\n%s", got)
	}
}

func TestSecretGenerate(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "secret", "generate", "--print"); err != nil {
		t.Fatalf("secret generate: %v", err)
	}

	want := strings.Replace(testEnv, "ILP_SECRET=old-secret", "ILP_SECRET=NEWSECRET", 1)
	if got := env.readEnv(t); got != want {
		t.Errorf("env file =\n%s\nwant\n%s", got, want)
	}
	if !strings.HasSuffix(env.stdout.String(), "NEWSECRET\n") {
		t.Errorf("stdout = %q, want the secret printed last", env.stdout)
	}
}

func TestSecretGenerate_VariableNotAssigned(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "secret", "generate", "--variable", "OTHER_SECRET"); err != nil {
		t.Fatalf("secret generate: %v", err)
	}
	if got := env.readEnv(t); got != testEnv {
		t.Errorf("env file modified:\n%s", got)
	}
	if !strings.Contains(env.stdout.String(), "nothing was written") {
		t.Errorf("stdout = %q", env.stdout)
	}
}

func TestPKI_JWS(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.runner.lines = []string{"generated /keys/sign.pem"}

	if err := env.run(t, "pki", "jws"); err != nil {
		t.Fatalf("pki jws: %v", err)
	}

	want := []string{"python3", "-u", "./pkitools.py", "generate_jws_keypair", "jwssigningkey.pem", "/keys/sign.pem", "/keys/verify.pem"}
	if len(env.runner.argv) != 1 || !slices.Equal(env.runner.argv[0], want) {
		t.Errorf("argv = %q, want %q", env.runner.argv, want)
	}
	if !strings.Contains(env.stdout.String(), "generated /keys/sign.pem") {
		t.Errorf("stdout = %q, want the tool output", env.stdout)
	}
}

func TestPKI_ToolExitCode(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.runner.exitCode = 3

	err := env.run(t, "pki", "jws")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.Code)
	}
}

func TestPKI_ClientMTLSMissingValues(t *testing.T) {
	t.Parallel()

	// The test schema has none of the security items.
	env := newTestEnvironment(t)
	if err := env.run(t, "pki", "client-mtls"); err == nil {
		t.Fatal("expected an error")
	}
	if len(env.runner.argv) != 0 {
		t.Errorf("tool ran with %q", env.runner.argv)
	}
}

func TestRestart(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.cfg.Services.Containers = []string{"itk-mojaloop-connector", "missing", "itk-redis"}

	if err := env.run(t, "restart"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if want := []string{"itk-mojaloop-connector", "itk-redis"}; !slices.Equal(env.engine.restarted, want) {
		t.Errorf("restarted = %q, want %q", env.engine.restarted, want)
	}
	if !strings.Contains(env.stdout.String(), "Container missing not found. Not restarting.") {
		t.Errorf("stdout = %q", env.stdout)
	}
}

func TestRestart_Failure(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.engine.failing = map[string]bool{"itk-redis": true}

	err := env.run(t, "restart")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if !slices.Equal(env.engine.restarted, []string{"itk-mojaloop-connector"}) {
		t.Errorf("restarted = %q", env.engine.restarted)
	}
}

func TestEdit_SaveAndExit(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	env.prompt.selects = []string{"group:dfsp_details", "save", "exit"}
	env.prompt.editFields = func(fields []tui.Field) []tui.Field {
		fields[0].Value = fields[0].Value.Kind().Parse("dfsp9")
		return fields
	}

	if err := env.run(t, "edit"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	want := strings.Replace(testEnv, "DFSP_ID=dfsp1", "DFSP_ID=dfsp9", 1)
	if got := env.readEnv(t); got != want {
		t.Errorf("env file =\n%s\nwant\n%s", got, want)
	}
	if !slices.Contains(env.prompt.notified, "Saved") {
		t.Errorf("notifications = %q, want Saved", env.prompt.notified)
	}
}

func TestRoot_LegacyEnvFileArguments(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	other := filepath.Join(env.dir, "other.env")
	if err := os.WriteFile(other, []byte("DFSP_ID=fromother\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	env.prompt.selects = []string{"group:dfsp_details", "save", "exit"}
	env.prompt.editFields = func(fields []tui.Field) []tui.Field {
		fields[0].Value = fields[0].Value.Kind().Parse("edited")
		return fields
	}

	if err := env.run(t, "mc="+other); err != nil {
		t.Fatalf("envsync mc=...: %v", err)
	}

	data, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "DFSP_ID=edited\n" {
		t.Errorf("other.env = %q", data)
	}
	if got := env.readEnv(t); got != testEnv {
		t.Errorf("configured env file was modified:\n%s", got)
	}
}

func TestRoot_UnknownArgument(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "bogus"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRoot_MissingSchema(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	err := env.run(t, "--verbose", "--schema", filepath.Join(env.dir, "nope.yaml"), "show")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	stderr := env.stderr.String()
	if !strings.Contains(stderr, "load schema") || !strings.Contains(stderr, "Schema document not found") {
		t.Errorf("stderr = %q, want the schema error and its issue help", stderr)
	}
}

func TestRoot_EnvFileFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	other := filepath.Join(env.dir, "other.env")
	if err := os.WriteFile(other, []byte("DFSP_ID=fromflag\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	if err := env.run(t, "--env-file", "mc="+other, "get", "dfsp_details", "DFSP ID"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := env.stdout.String(); got != "fromflag\n" {
		t.Errorf("stdout = %q, want fromflag", got)
	}
}

func TestRoot_InvalidEnvFileFlag(t *testing.T) {
	t.Parallel()

	env := newTestEnvironment(t)
	if err := env.run(t, "--env-file", "no-equals", "show"); err == nil {
		t.Fatal("expected an error")
	}
}
