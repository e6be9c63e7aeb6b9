package project

import (
	"fmt"
	"strings"

	"dockfleet/cmd/dockfleet/cmdutil"
	"dockfleet/cmd/dockfleet/ui"

	"github.com/spf13/cobra"
)

func conflictsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Show project name conflicts withheld from the project list",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdutil.Build(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.Engine.Projects(cmd.Context(), false); err != nil {
				return err
			}

			conflicts := app.Engine.ConflictErrors()
			if len(conflicts) == 0 {
				fmt.Println(ui.SuccessMsg("no project name conflicts"))
				return nil
			}

			rows := make([][]string, len(conflicts))
			for i, c := range conflicts {
				rows[i] = []string{c.ProjectName, strings.Join(c.ConflictingFilePaths, "\n")}
			}
			fmt.Println(ui.Table([]string{"Project", "Conflicting Files"}, rows))
			fmt.Println(ui.Muted("disable all but one file with `x-disabled: true` to resolve"))
			return nil
		},
	}
}
