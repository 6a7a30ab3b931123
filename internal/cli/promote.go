package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/service"
)

type promoteOpts struct {
	dryRun bool
	force  bool
}

// promoteCommand creates the promote command. It prints the promotion
// report first and refuses to promote a module that depends on
// do-not-use artifacts unless --force is given.
func (c *CLI) promoteCommand() *cobra.Command {
	var opts promoteOpts

	cmd := &cobra.Command{
		Use:   "promote <module-id>",
		Short: "Promote a module and everything it depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			return c.withService(ctx, func(_ *config.Config, svc *service.Service) error {
				report, err := svc.PromotionReport(ctx, id)
				if err != nil {
					return err
				}
				printReport(report)

				if opts.dryRun {
					if report.Promotable() {
						printNextStep("Promote with", "grapes promote "+id)
					}
					return nil
				}
				if len(report.DoNotUse) > 0 && !opts.force {
					return grapeserrors.New(grapeserrors.ErrCodeInvalidInput,
						"Module %s depends on %d do-not-use artifacts; use --force to promote anyway.", id, len(report.DoNotUse))
				}

				prog := newProgress(c.Logger)
				if err := svc.PromoteModule(ctx, id); err != nil {
					return err
				}
				prog.done("promoted module", "module", id, "artifacts", len(report.Unpromoted))
				printSuccess("Promoted %s", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "only show what blocks the promotion")
	cmd.Flags().BoolVar(&opts.force, "force", false, "promote despite do-not-use dependencies")

	return cmd
}

func printReport(r *service.PromotionReport) {
	if r.Promotable() {
		printSuccess("%s is ready for promotion", r.Module)
		return
	}
	if n := len(r.Unpromoted); n > 0 {
		printWarning("%d dependencies are not promoted", n)
		for _, g := range r.Unpromoted {
			printDetail("%s", g)
		}
	}
	if n := len(r.DoNotUse); n > 0 {
		printError("%d dependencies are flagged do-not-use", n)
		for _, g := range r.DoNotUse {
			printDetail("%s", g)
		}
	}
}
