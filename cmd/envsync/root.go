// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"envsync-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	schemaPath string
	envFiles   []string
	verbose    bool
}

// NewRootCommand builds the envsync command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "envsync [key=path...]",
		Short: "Edit env files through a typed configuration schema",
		Long: TitleStyle.Render("envsync") + SubtitleStyle.Render(" - Edit env files through a typed configuration schema") + `

envsync reads a schema document that groups typed configuration items and
binds each item to a variable in an env file. Values are read from the env
files, edited interactively or from the command line, and written back by
rewriting only the value portion of the affected lines. Comments, ordering
and unrelated variables are left alone.

` + SubtitleStyle.Render("Examples:") + `
  envsync                                 Open the interactive editor
  envsync mc=./mojaloop-connector.env     Edit with an explicit env file
  envsync show                            Print every item with its value
  envsync set dfsp_details "DFSP ID" x    Change one item and save
  envsync secret generate                 Write a new ILP secret
  envsync config show                     Show current configuration`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare key=path arguments are accepted as env files.
			for _, arg := range args {
				if !strings.Contains(arg, "=") {
					return fmt.Errorf("unknown command %q for %q", arg, cmd.CommandPath())
				}
			}
			flags.envFiles = append(args, flags.envFiles...)
			return app.runEdit(cmd, flags)
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetIn(app.stdin)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/envsync/config.cue)")
	pf.StringVar(&flags.schemaPath, "schema", "", "schema document (overrides 'schema' in config)")
	pf.StringArrayVar(&flags.envFiles, "env-file", nil, "env file as key=path (repeatable, overrides env_files entries with the same key)")

	rootCmd.AddCommand(
		newEditCommand(app, flags),
		newShowCommand(app, flags),
		newGetCommand(app, flags),
		newSetCommand(app, flags),
		newSecretCommand(app, flags),
		newPKICommand(app, flags),
		newRestartCommand(app, flags),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError leaves errors the commands already rendered alone.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail renders err for the user and returns the ExitError RunE should return.
func (a *App) fail(cmd *cobra.Command, flags *rootFlags, err error) error {
	if err == nil {
		return nil
	}

	issueID, styled := classifyError(err, flags.verbose)
	renderServiceError(a.stderr, newServiceError(err, issueID, styled), a.stylePath(), flags.verbose)

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: exitCode(err), Err: err}
}

func (a *App) stylePath() string {
	if a.issueStyle != "" {
		return a.issueStyle
	}
	return "dark"
}
