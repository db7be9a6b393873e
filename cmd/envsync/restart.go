// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestartCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the services that read the env files",
		Long: `Restart the containers listed in services.containers with the configured
container engine (docker, falling back to podman). Containers that do not
exist are reported and skipped; the command fails if any restart fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			cfg, _, err := app.loadConfig(ctx, flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			ws := &workspace{cfg: cfg, logger: newLogger(app.stderr, cfg.UI.Verbose)}

			if len(cfg.Services.Containers) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No services configured."))
				return nil
			}
			if err := app.restartServices(ctx, ws); err != nil {
				return app.fail(cmd, flags, err)
			}
			return nil
		},
	}
}
