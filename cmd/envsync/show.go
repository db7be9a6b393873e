// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envsync-cli/internal/engine"
)

func newShowCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [group]",
		Short: "Print schema items with their current values",
		Long: `Print every schema item with its current value and where it was read from.

Items whose variable is not present in their env file show the schema
default and are marked "not found".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.openWorkspace(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			group := ""
			if len(args) == 1 {
				group = args[0]
				if _, ok := ws.engine.Schema().Group(group); !ok {
					return app.fail(cmd, flags, fmt.Errorf("unknown group %q", group))
				}
			}
			app.printEntries(ws.engine, group, flags.verbose)
			return nil
		},
	}
}

func newGetCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <group> <item>",
		Short: "Print the value of one schema item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.openWorkspace(commandContext(cmd), flags)
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			v, err := ws.engine.GetItemValue(args[0], args[1])
			if err != nil {
				return app.fail(cmd, flags, err)
			}
			fmt.Fprintln(app.stdout, v.String())
			return nil
		},
	}
}

// printEntries lists the items of group, or of every group when group is "".
func (a *App) printEntries(e *engine.Engine, group string, verbose bool) {
	entries := e.Entries()
	for _, g := range e.Schema().Groups {
		if group != "" && g.ID != group {
			continue
		}

		fmt.Fprintf(a.stdout, "%s %s\n", TitleStyle.Render(g.Name), SubtitleStyle.Render("("+g.ID+")"))
		if verbose && g.Description != "" {
			fmt.Fprintln(a.stdout, SubtitleStyle.Render("  "+g.Description))
		}

		for _, ent := range entries {
			if ent.Ref.GroupID != g.ID {
				continue
			}
			fmt.Fprintf(a.stdout, "  %s = %s  %s\n",
				ent.Ref.Name,
				ent.Item.Kind.Parse(ent.Value).String(),
				VerboseStyle.Render(provenanceLabel(ent)))
		}
		fmt.Fprintln(a.stdout)
	}
}

func provenanceLabel(ent engine.Entry) string {
	if ent.Provenance == nil {
		return fmt.Sprintf("[%s in %s: not found, default]", ent.Item.EnvVar.Name, ent.Item.EnvVar.File)
	}
	return fmt.Sprintf("[%s at %s:%d]", ent.Item.EnvVar.Name, ent.Provenance.Path, ent.Provenance.Line)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
