package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/service"
)

// licensesCommand creates the licenses command. With a module id it rolls
// up the licenses of the module and its dependencies; without one it
// lists the license catalog.
func (c *CLI) licensesCommand() *cobra.Command {
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "licenses [module-id]",
		Short: "Show the licenses of a module or of the catalog",
		Example: `  grapes licenses app:1.0
  grapes licenses app:1.0 --filter approved=false
  grapes licenses --filter to-be-validated=true`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := filter.FromParams(filters)
			return c.withService(ctx, func(_ *config.Config, svc *service.Service) error {
				var (
					ls  []model.License
					err error
				)
				if len(args) == 1 {
					ls, err = svc.ModuleLicenses(ctx, args[0], p)
				} else {
					ls, err = svc.Licenses(ctx, p)
				}
				if err != nil {
					return err
				}
				if len(ls) == 0 {
					printInfo("No licenses")
					return nil
				}

				rows := make([][]string, len(ls))
				for i := range ls {
					rows[i] = []string{ls[i].Name, licenseStatus(&ls[i]), ls[i].URL}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"License", "Status", "URL"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringToStringVar(&filters, "filter", nil, "filter as key=value (repeatable)")

	return cmd
}
