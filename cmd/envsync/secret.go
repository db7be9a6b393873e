// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSecretCommand(app *App, flags *rootFlags) *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the ILP secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var (
		length     int
		variable   string
		printValue bool
	)
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new ILP secret and write it to the env files",
		Long: `Generate a random alphanumeric secret and write it to every line that
assigns the secret variable (ILP_SECRET by default) in every configured env
file. Files that do not assign the variable are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.openWorkspace(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			if !cmd.Flags().Changed("length") {
				length = ws.cfg.Secret.Length
			}
			if !cmd.Flags().Changed("variable") {
				variable = ws.cfg.Secret.Variable
			}

			value, report, err := app.writeSecret(ws, variable, length)
			if err != nil {
				return app.fail(cmd, flags, err)
			}

			if len(report.Files) == 0 {
				fmt.Fprintf(app.stdout, "%s %s is not assigned in any env file; nothing was written.\n",
					WarningStyle.Render("!"), CmdStyle.Render(variable))
			} else {
				fmt.Fprint(app.stdout, report.String())
				fmt.Fprintf(app.stdout, "%s New %s generated and written to disk.\n",
					SuccessStyle.Render("✓"), CmdStyle.Render(variable))
			}
			if printValue {
				fmt.Fprintln(app.stdout, value)
			}
			return nil
		},
	}
	generateCmd.Flags().IntVar(&length, "length", 0, "secret length (default from config, 32)")
	generateCmd.Flags().StringVar(&variable, "variable", "", "env variable to write (default from config, ILP_SECRET)")
	generateCmd.Flags().BoolVar(&printValue, "print", false, "also print the generated secret")

	secretCmd.AddCommand(generateCmd)
	return secretCmd
}
