package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/service"
)

// browseCommand creates the browse command: pick a module interactively,
// then print its dependencies.
func (c *CLI) browseCommand() *cobra.Command {
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick a module and inspect its dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := filter.FromParams(filters)
			return c.withService(ctx, func(_ *config.Config, svc *service.Service) error {
				mods, err := svc.Modules(ctx, p)
				if err != nil {
					return err
				}
				if len(mods) == 0 {
					printInfo("The catalog has no modules")
					printNextStep("Import one with", "grapes import <snapshot.json | gavc>")
					return nil
				}

				final, err := tea.NewProgram(NewModuleListModel(mods), tea.WithContext(ctx)).Run()
				if err != nil {
					return err
				}
				sel := final.(ModuleListModel).Selected
				if sel == nil {
					return nil
				}
				return showDependencies(ctx, cmd.OutOrStdout(), svc, sel.ID(), p)
			})
		},
	}

	cmd.Flags().StringToStringVar(&filters, "filter", nil, "filter as key=value (repeatable)")

	return cmd
}

// showDependencies prints the transitive dependencies of a module as a
// table, followed by the targets missing from the catalog.
func showDependencies(ctx context.Context, w io.Writer, svc *service.Service, id string, p *filter.Pipeline) error {
	deps, err := svc.Dependencies(ctx, id, p)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, StyleTitle.Render(deps.Module))
	if len(deps.Artifacts) == 0 && len(deps.Unknown) == 0 {
		printInfo("No dependencies")
		return nil
	}

	rows := make([][]string, len(deps.Artifacts))
	for i, a := range deps.Artifacts {
		rows[i] = []string{a.Gavc(), yesNo(a.Promoted), yesNo(a.DoNotUse), strings.Join(a.Licenses, ", ")}
	}
	fmt.Fprintln(w, renderTable([]string{"Artifact", "Promoted", "Do not use", "Licenses"}, rows))

	for _, u := range deps.Unknown {
		printWarning("%s is not in the catalog", u)
	}
	return nil
}
