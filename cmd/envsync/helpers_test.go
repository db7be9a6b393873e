// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"envsync-cli/internal/config"
	"envsync-cli/internal/container"
	"envsync-cli/internal/pki"
	"envsync-cli/internal/procrun"
	"envsync-cli/internal/tui"
)

const testSchema = `{
  "groups": [
    {
      "id": "dfsp_details",
      "name": "DFSP Details",
      "description": "Identity of this DFSP.",
      "items": [
        {"name": "DFSP ID", "type": "string", "env_var": {"file": "mc", "name": "DFSP_ID"}},
        {"name": "Enable JWS Signing", "type": "bool", "value": false, "env_var": {"file": "mc", "name": "JWS_SIGN"}}
      ]
    },
    {
      "id": "non_repudiation",
      "name": "Non Repudiation",
      "items": [
        {"name": "JWS Signing (private) key path", "type": "string", "env_var": {"file": "mc", "name": "JWS_SIGNING_KEY_PATH"}},
        {"name": "JWS verification (public) key path", "type": "string", "env_var": {"file": "mc", "name": "JWS_VERIFICATION_KEY_PATH"}},
        {"name": "Peer Endpoint", "type": "string", "value": "localhost:4000", "env_var": {"file": "mc", "name": "PEER_ENDPOINT"}}
      ]
    }
  ]
}
`

const testEnv = `# Mojaloop connector
DFSP_ID=dfsp1
JWS_SIGN=false

# keys
JWS_SIGNING_KEY_PATH=/keys/sign.pem
JWS_VERIFICATION_KEY_PATH=/keys/verify.pem
ILP_SECRET=old-secret
`

type (
	// staticConfig is a ConfigProvider returning a copy of cfg.
	staticConfig struct {
		cfg  *config.Config
		path string
	}

	// fakeRunner records PKI tool invocations.
	fakeRunner struct {
		argv     [][]string
		lines    []string
		exitCode int
		err      error
	}

	// fakeEngine is a container.Engine whose containers are a fixed set.
	fakeEngine struct {
		existing  map[string]bool
		failing   map[string]bool
		restarted []string
	}

	// scriptedPrompter answers Select calls from a script and applies
	// editFields to every EditFields call.
	scriptedPrompter struct {
		selects    []string
		editFields func(fields []tui.Field) []tui.Field
		notified   []string
	}

	testEnvironment struct {
		dir     string
		envPath string
		cfg     *config.Config
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		runner  *fakeRunner
		engine  *fakeEngine
		prompt  *scriptedPrompter
		app     *App
	}
)

func (p *staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, string, error) {
	cfg := *p.cfg
	cfg.EnvFiles = append([]config.EnvFileEntry(nil), p.cfg.EnvFiles...)
	cfg.Services.Containers = append([]string(nil), p.cfg.Services.Containers...)
	return &cfg, p.path, nil
}

func (r *fakeRunner) Run(_ context.Context, argv []string, onLine procrun.LineFunc) (int, error) {
	r.argv = append(r.argv, argv)
	for _, line := range r.lines {
		onLine(procrun.StreamStdout, line)
	}
	return r.exitCode, r.err
}

func (e *fakeEngine) Name() string                            { return "fake" }
func (e *fakeEngine) Available() bool                         { return true }
func (e *fakeEngine) Version(context.Context) (string, error) { return "1.0", nil }

func (e *fakeEngine) Exists(_ context.Context, name string) (bool, error) {
	return e.existing[name], nil
}

func (e *fakeEngine) Restart(_ context.Context, name string) error {
	if !e.existing[name] {
		return &container.ContainerNotFoundError{Engine: "fake", Name: name}
	}
	if e.failing[name] {
		return os.ErrPermission
	}
	e.restarted = append(e.restarted, name)
	return nil
}

func (p *scriptedPrompter) Select(_ string, _ []tui.Choice) (string, error) {
	if len(p.selects) == 0 {
		return "", tui.ErrCancelled
	}
	next := p.selects[0]
	p.selects = p.selects[1:]
	return next, nil
}

func (p *scriptedPrompter) EditFields(_, _ string, fields []tui.Field) ([]tui.Field, error) {
	if p.editFields == nil {
		return fields, nil
	}
	return p.editFields(fields), nil
}

func (p *scriptedPrompter) Confirm(_, _ string, value bool) (bool, error) { return value, nil }

func (p *scriptedPrompter) Notify(title, _ string) error {
	p.notified = append(p.notified, title)
	return nil
}

// newTestEnvironment writes the schema and env file to a temp dir and builds
// an App around fakes.
func newTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	envPath := filepath.Join(dir, "mc.env")
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	if err := os.WriteFile(envPath, []byte(testEnv), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Schema = schemaPath
	cfg.EnvFiles = []config.EnvFileEntry{{Key: "mc", Path: envPath}}
	cfg.Services.Containers = []string{"itk-mojaloop-connector", "itk-redis"}
	cfg.PKI.Command = "python3 -u ./pkitools.py"

	env := &testEnvironment{
		dir:     dir,
		envPath: envPath,
		cfg:     cfg,
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		runner:  &fakeRunner{},
		engine:  &fakeEngine{existing: map[string]bool{"itk-mojaloop-connector": true, "itk-redis": true}},
		prompt:  &scriptedPrompter{},
	}
	env.app = NewApp(Dependencies{
		Config: &staticConfig{cfg: cfg},
		ContainerEngine: func(config.ContainerEngine) (container.Engine, error) {
			return env.engine, nil
		},
		Runner:     func(*config.Config) pki.CommandRunner { return env.runner },
		Prompter:   func(*config.Config) tui.Prompter { return env.prompt },
		NewSecret:  func(int) (string, error) { return "NEWSECRET", nil },
		Stdout:     env.stdout,
		Stderr:     env.stderr,
		Stdin:      strings.NewReader(""),
		IssueStyle: "notty",
	})
	return env
}

// run executes the command tree with args.
func (env *testEnvironment) run(t *testing.T, args ...string) error {
	t.Helper()

	root := NewRootCommand(env.app)
	root.SetArgs(args)
	return root.ExecuteContext(t.Context())
}

func (env *testEnvironment) readEnv(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(env.envPath)
	if err != nil {
		t.Fatalf("failed to read env file: %v", err)
	}
	return string(data)
}
