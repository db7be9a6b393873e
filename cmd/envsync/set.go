// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"envsync-cli/internal/engine"
	"envsync-cli/internal/schema"
)

func newSetCommand(app *App, flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set <group> <item> <value> [<group> <item> <value>...]",
		Short: "Change schema items and save them to their env files",
		Long: `Change one or more schema items and save them to their env files.

Arguments come in group, item, value triplets. All changes are validated
before any file is written. Bool items accept true or false.`,
		Example: `  envsync set dfsp_details "DFSP ID" mydfsp
  envsync set dfsp_details "DFSP ID" mydfsp dfsp_details "Enable JWS Signing" true
  envsync set --dry-run dfsp_details "DFSP ID" mydfsp`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%3 != 0 {
				return fmt.Errorf("expected group, item and value triplets, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.openWorkspace(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}

			edits, err := parseEdits(ws.engine.Schema(), args)
			if err != nil {
				return app.fail(cmd, flags, err)
			}

			var report *engine.SaveReport
			if dryRun {
				report, err = ws.engine.Plan(edits)
			} else {
				report, err = ws.engine.Save(edits)
			}
			if err != nil {
				if report != nil {
					fmt.Fprint(app.stdout, report.String())
				}
				return app.fail(cmd, flags, err)
			}

			app.printReport(report, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the changes without writing any file")
	return cmd
}

// parseEdits turns group/item/value triplets into typed edits.
func parseEdits(s *schema.Schema, args []string) (engine.Edits, error) {
	edits := make(engine.Edits, len(args)/3)
	for i := 0; i+2 < len(args); i += 3 {
		groupID, name, raw := args[i], args[i+1], args[i+2]

		g, ok := s.Group(groupID)
		if !ok {
			return nil, &engine.UnknownItemError{Item: engine.ItemRef{GroupID: groupID, Name: name}}
		}
		it, ok := g.Item(name)
		if !ok {
			return nil, &engine.UnknownItemError{Item: engine.ItemRef{GroupID: groupID, Name: name}}
		}

		v := schema.StringValue(raw)
		if it.Kind == schema.KindBool {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: invalid bool value %q", groupID, name, raw)
			}
			v = schema.BoolValue(b)
		}
		edits[engine.ItemRef{GroupID: groupID, Name: name}] = v
	}
	return edits, nil
}

func (a *App) printReport(report *engine.SaveReport, dryRun bool) {
	summary := report.String()
	switch {
	case summary == "":
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("No changes."))
	case dryRun:
		fmt.Fprintln(a.stdout, WarningStyle.Render("Dry run, nothing written:"))
		fmt.Fprint(a.stdout, summary)
	default:
		fmt.Fprint(a.stdout, summary)
		fmt.Fprintln(a.stdout, SuccessStyle.Render("✓")+" Saved.")
	}
}
