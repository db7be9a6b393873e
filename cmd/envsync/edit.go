// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"envsync-cli/internal/tui"
)

func newEditCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive configuration editor",
		Long: `Open the interactive configuration editor.

The editor lists the schema groups, lets you edit their items, and saves the
changes back to the env files. From the security menu you can run the PKI
tool or write a new ILP secret. This is also what 'envsync' runs when no
subcommand is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runEdit(cmd, flags)
		},
	}
}

func (a *App) runEdit(cmd *cobra.Command, flags *rootFlags) error {
	ctx := commandContext(cmd)

	ws, err := a.openWorkspace(ctx, flags)
	if err != nil {
		return a.fail(cmd, flags, err)
	}

	session := tui.NewSession(ws.engine, a.Prompter(ws.cfg), a.editorActions(ws), tui.WithSessionLogger(ws.logger))
	if err := session.Run(ctx); err != nil {
		return a.fail(cmd, flags, err)
	}
	return nil
}

// editorActions binds the editor's security and restart menus to ws.
func (a *App) editorActions(ws *workspace) tui.Actions {
	actions := tui.Actions{
		GenerateClientMTLS: func(ctx context.Context) error {
			tool, err := a.pkiTool(ws)
			if err != nil {
				return err
			}
			return tool.GenerateClientMTLS(ctx, ws.engine, a.printLine)
		},
		GenerateJWSKeypair: func(ctx context.Context) error {
			tool, err := a.pkiTool(ws)
			if err != nil {
				return err
			}
			return tool.GenerateJWSKeypair(ctx, ws.engine, a.printLine)
		},
		NewSecret: func() (string, error) {
			return a.NewSecret(ws.cfg.Secret.Length)
		},
		SecretVariable: ws.cfg.Secret.Variable,
	}
	if len(ws.cfg.Services.Containers) > 0 {
		actions.Restart = func(ctx context.Context) error {
			return a.restartServices(ctx, ws)
		}
	}
	return actions
}
