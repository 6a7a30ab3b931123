package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/service"
	"github.com/matzehuels/grapes/pkg/version"
)

type versionsOpts struct {
	remote  bool
	refresh bool
	noCache bool
}

// versionsCommand creates the versions command listing the known versions
// of an artifact.
func (c *CLI) versionsCommand() *cobra.Command {
	var opts versionsOpts

	cmd := &cobra.Command{
		Use:   "versions <gavc>",
		Short: "List the versions of an artifact",
		Long: `List the versions of an artifact, one per line, followed by the last
version, the last release and, when the gavc names a version, whether it
is up to date.

With --remote the versions come from the Maven repository instead of the
catalog; versions also present in the catalog are marked.`,
		Example: `  grapes versions org.slf4j:slf4j-api:1.7.36
  grapes versions org.slf4j:slf4j-api --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gavc := args[0]
			if err := grapeserrors.ValidateGavc(gavc); err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withService(ctx, func(cfg *config.Config, svc *service.Service) error {
				if opts.remote {
					return remoteVersions(ctx, cmd.OutOrStdout(), cfg, svc, gavc, opts)
				}
				return catalogVersions(ctx, cmd.OutOrStdout(), svc, gavc)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.remote, "remote", false, "list versions published in the Maven repository")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached repository responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the lookup cache")

	return cmd
}

func catalogVersions(ctx context.Context, w io.Writer, svc *service.Service, gavc string) error {
	versions, err := svc.ArtifactVersions(ctx, gavc)
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Fprintln(w, v)
	}

	last, err := svc.LastVersion(ctx, gavc)
	if err != nil {
		return err
	}
	printKeyValue("last version", last)

	switch release, err := svc.LastRelease(ctx, gavc); {
	case err == nil:
		printKeyValue("last release", release)
	case grapeserrors.Is(err, grapeserrors.ErrCodeNotFound):
		printKeyValue("last release", StyleDim.Render("none"))
	default:
		printWarning("cannot order versions: %s", grapeserrors.UserMessage(err))
	}

	if model.ParseGavc(gavc).Version != "" {
		upToDate, err := svc.IsUpToDate(ctx, gavc)
		if err != nil {
			return err
		}
		printKeyValue("up to date", strconv.FormatBool(upToDate))
	}
	return nil
}

func remoteVersions(ctx context.Context, w io.Writer, cfg *config.Config, svc *service.Service, gavc string, opts versionsOpts) error {
	lookups, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer lookups.Close()

	g := model.ParseGavc(gavc)
	spin := newSpinner(ctx, "Fetching "+g.GroupID+":"+g.ArtifactID)
	spin.Start()
	versions, err := newMaven(lookups, cfg).Versions(ctx, g.GroupID, g.ArtifactID, opts.refresh)
	spin.Stop()
	if err != nil {
		return err
	}

	known := map[string]bool{}
	if local, err := svc.ArtifactVersions(ctx, gavc); err == nil {
		for _, v := range local {
			known[v] = true
		}
	}
	for _, v := range versions {
		if known[v] {
			fmt.Fprintln(w, v+" "+StyleSuccess.Render("(catalogued)"))
		} else {
			fmt.Fprintln(w, v)
		}
	}

	printKeyValue("last version", version.Newest(versions))
	if release, ok, err := version.LatestRelease(versions); err == nil && ok {
		printKeyValue("last release", release)
	}
	return nil
}
