package project

import (
	"fmt"

	"dockfleet/cmd/dockfleet/cmdutil"
	"dockfleet/cmd/dockfleet/ui"

	"github.com/spf13/cobra"
)

func refreshCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Invalidate the discovery cache and rescan",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdutil.Build(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Engine.InvalidateCache()
			projects, err := app.Engine.Projects(cmd.Context(), true)
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("rescanned %s: %d project(s)", app.Config.Root, len(projects)))
			if conflicts := app.Engine.ConflictErrors(); len(conflicts) > 0 {
				fmt.Println(ui.WarnMsg("%d project name conflict(s), run `dockfleet project conflicts`", len(conflicts)))
			}
			return nil
		},
	}
}
