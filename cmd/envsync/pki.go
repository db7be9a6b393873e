// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envsync-cli/internal/pki"
	"envsync-cli/internal/procrun"
)

func newPKICommand(app *App, flags *rootFlags) *cobra.Command {
	pkiCmd := &cobra.Command{
		Use:   "pki",
		Short: "Run the PKI tool with values from the env files",
		Long: `Run the external PKI tool (pki.command in config) with paths and names
taken from the schema items. The tool's output is streamed line by line and
its exit code becomes envsync's exit code when it fails.

Values are read from the env files as saved; unsaved editor changes are not
used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pkiCmd.AddCommand(
		newPKIOperationCommand(app, flags, "client-mtls",
			"Generate client side mTLS artefacts",
			func(ctx context.Context, t *pki.Tool, src pki.ValueSource, onLine procrun.LineFunc) error {
				return t.GenerateClientMTLS(ctx, src, onLine)
			}),
		newPKIOperationCommand(app, flags, "jws",
			"Generate a JWS signing and verification key pair",
			func(ctx context.Context, t *pki.Tool, src pki.ValueSource, onLine procrun.LineFunc) error {
				return t.GenerateJWSKeypair(ctx, src, onLine)
			}),
	)
	return pkiCmd
}

type pkiOperation func(ctx context.Context, t *pki.Tool, src pki.ValueSource, onLine procrun.LineFunc) error

func newPKIOperationCommand(app *App, flags *rootFlags, use, short string, op pkiOperation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			ws, err := app.openWorkspace(ctx, flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}

			tool, err := app.pkiTool(ws)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			ws.logger.Debug("running pki tool", "command", ws.cfg.PKI.Command, "operation", use)

			if err := op(ctx, tool, ws.engine, app.printLine); err != nil {
				return app.fail(cmd, flags, err)
			}
			fmt.Fprintf(app.stdout, "%s %s done.\n", SuccessStyle.Render("✓"), short)
			return nil
		},
	}
}
