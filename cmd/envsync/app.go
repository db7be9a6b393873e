// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"envsync-cli/internal/config"
	"envsync-cli/internal/container"
	"envsync-cli/internal/engine"
	"envsync-cli/internal/issue"
	"envsync-cli/internal/pki"
	"envsync-cli/internal/procrun"
	"envsync-cli/internal/schema"
	"envsync-cli/internal/secret"
	"envsync-cli/internal/tui"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and goes
	// through its fields for configuration, external tools and I/O.
	App struct {
		Config          ConfigProvider
		ContainerEngine ContainerEngineFactory
		Runner          RunnerFactory
		Prompter        PrompterFactory
		NewSecret       func(length int) (string, error)
		stdout          io.Writer
		stderr          io.Writer
		stdin           io.Reader
		issueStyle      string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config          ConfigProvider
		ContainerEngine ContainerEngineFactory
		Runner          RunnerFactory
		Prompter        PrompterFactory
		NewSecret       func(length int) (string, error)
		Stdout          io.Writer
		Stderr          io.Writer
		Stdin           io.Reader
		// IssueStyle is the glamour style used for issue help ("" picks one
		// from ui.color_scheme).
		IssueStyle string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// ContainerEngineFactory returns the engine used to restart services.
	ContainerEngineFactory func(preferred config.ContainerEngine) (container.Engine, error)

	// RunnerFactory returns the runner for the PKI tool.
	RunnerFactory func(cfg *config.Config) pki.CommandRunner

	// PrompterFactory returns the prompter of the interactive editor.
	PrompterFactory func(cfg *config.Config) tui.Prompter

	// workspace is everything a command needs once configuration, schema and
	// env files are loaded.
	workspace struct {
		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
		engine  *engine.Engine
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:          deps.Config,
		ContainerEngine: deps.ContainerEngine,
		Runner:          deps.Runner,
		Prompter:        deps.Prompter,
		NewSecret:       deps.NewSecret,
		stdout:          deps.Stdout,
		stderr:          deps.Stderr,
		stdin:           deps.Stdin,
		issueStyle:      deps.IssueStyle,
	}

	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.ContainerEngine == nil {
		app.ContainerEngine = func(preferred config.ContainerEngine) (container.Engine, error) {
			return container.NewEngine(container.EngineType(preferred))
		}
	}
	if app.Runner == nil {
		app.Runner = func(cfg *config.Config) pki.CommandRunner {
			return procrun.New(procrun.WithPTY(cfg.PKI.PTY))
		}
	}
	if app.NewSecret == nil {
		app.NewSecret = secret.Generate
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.Prompter == nil {
		app.Prompter = func(cfg *config.Config) tui.Prompter {
			tcfg := tui.DefaultConfig()
			tcfg.Theme = tui.ThemeForColorScheme(cfg.UI.ColorScheme.String())
			tcfg.Input = app.stdin
			tcfg.Output = app.stdout
			return tui.NewHuhPrompter(tcfg)
		}
	}

	return app
}

// newLogger returns the CLI logger on w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "envsync"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadConfig loads the configuration and applies the global flags.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, string, error) {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, "", err
	}

	if flags.schemaPath != "" {
		cfg.Schema = flags.schemaPath
	}
	for _, raw := range flags.envFiles {
		entry, err := config.ParseEnvFileEntry(raw)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("parse --env-file").
				WithResource(raw).
				WithSuggestion("Use the form key=path, e.g. --env-file mc=./mojaloop-connector.env").
				Wrap(err).
				BuildError()
		}
		cfg.EnvFiles = mergeEnvFile(cfg.EnvFiles, entry)
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}

	return cfg, path, nil
}

// mergeEnvFile replaces the entry with the same key or appends a new one.
func mergeEnvFile(entries []config.EnvFileEntry, entry config.EnvFileEntry) []config.EnvFileEntry {
	out := append([]config.EnvFileEntry(nil), entries...)
	for i := range out {
		if out[i].Key == entry.Key {
			out[i] = entry
			return out
		}
	}
	return append(out, entry)
}

// openWorkspace loads config, schema and env files.
func (a *App) openWorkspace(ctx context.Context, flags *rootFlags) (*workspace, error) {
	cfg, cfgPath, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}
	logger := newLogger(a.stderr, cfg.UI.Verbose)
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	s, err := schema.Load(cfg.Schema)
	if err != nil {
		return nil, schemaError(cfg.Schema, err)
	}

	files := make([]engine.EnvFile, len(cfg.EnvFiles))
	for i, f := range cfg.EnvFiles {
		files[i] = engine.EnvFile{Key: f.Key, Path: f.Path}
	}

	e, err := engine.New(s, files,
		engine.WithLogger(logger),
		engine.WithMissingVariablePolicy(engine.MissingVariablePolicy(cfg.Save.MissingVariable)),
	)
	if err != nil {
		return nil, err
	}
	if err := e.Load(); err != nil {
		return nil, envFileError(err)
	}

	return &workspace{cfg: cfg, cfgPath: cfgPath, logger: logger, engine: e}, nil
}

func schemaError(path string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("load schema").
		WithResource(path).
		Wrap(err)
	if errors.Is(err, fs.ErrNotExist) {
		return ctx.
			WithSuggestion("Pass the schema with --schema or set 'schema' in config.cue").
			WithIssue(issue.SchemaNotFoundId).
			BuildError()
	}
	return ctx.
		WithSuggestion("Check the schema document against the expected layout").
		WithIssue(issue.SchemaParseErrorId).
		BuildError()
}

func envFileError(err error) error {
	var ioErr *engine.IOError
	if !errors.As(err, &ioErr) {
		return err
	}
	ctx := issue.NewErrorContext().
		WithOperation("read env file").
		WithResource(ioErr.Path).
		Wrap(err)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ctx = ctx.
			WithSuggestions(
				"Pass the file with --env-file key=path or add it to env_files in config.cue",
				"Run 'envsync config show' to see which files are configured",
			).
			WithIssue(issue.EnvFileNotFoundId)
	case errors.Is(err, fs.ErrPermission):
		ctx = ctx.WithIssue(issue.PermissionDeniedId)
	}
	return ctx.BuildError()
}

// restartServices restarts the configured containers and prints one line per
// container.
func (a *App) restartServices(ctx context.Context, ws *workspace) error {
	eng, err := a.ContainerEngine(ws.cfg.ContainerEngine)
	if err != nil {
		return err
	}

	report, err := container.RestartServices(ctx, eng, ws.cfg.Services.Containers, ws.logger)
	if err != nil {
		return err
	}
	// A missing container is reported but does not fail the restart.
	var errs []error
	for _, res := range report.Results {
		switch res.Status {
		case container.RestartStatusRestarted:
			fmt.Fprintf(a.stdout, "%s Container %s restarted.\n", SuccessStyle.Render("✓"), res.Container)
		case container.RestartStatusNotFound:
			fmt.Fprintf(a.stdout, "%s Container %s not found. Not restarting.\n", WarningStyle.Render("!"), res.Container)
		default:
			fmt.Fprintf(a.stdout, "%s Error restarting container %s: %v\n", ErrorStyle.Render("✗"), res.Container, res.Err)
			errs = append(errs, fmt.Errorf("%s: %w", res.Container, res.Err))
		}
	}
	return errors.Join(errs...)
}

// pkiTool builds the PKI tool for ws.
func (a *App) pkiTool(ws *workspace) (*pki.Tool, error) {
	argv, err := procrun.SplitCommand(ws.cfg.PKI.Command, nil)
	if err != nil {
		return nil, err
	}
	return pki.NewTool(argv, ws.cfg.PKI.KeyName, a.Runner(ws.cfg))
}

// printLine streams PKI tool output.
func (a *App) printLine(stream procrun.Stream, line string) {
	if stream == procrun.StreamStderr {
		fmt.Fprintln(a.stderr, line)
		return
	}
	fmt.Fprintln(a.stdout, line)
}

// writeSecret generates a secret and writes it to the configured variable.
func (a *App) writeSecret(ws *workspace, variable string, length int) (string, *engine.SaveReport, error) {
	value, err := a.NewSecret(length)
	if err != nil {
		return "", nil, err
	}
	report, err := ws.engine.PatchVariable(variable, value)
	if err != nil {
		return "", nil, envFileError(err)
	}
	return value, report, nil
}
