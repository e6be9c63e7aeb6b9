package project

import (
	"fmt"
	"sort"
	"strings"

	"dockfleet/cmd/dockfleet/cmdutil"
	"dockfleet/cmd/dockfleet/ui"

	"github.com/spf13/cobra"
)

func actionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <project>",
		Short: "Show which compose actions apply to a project in its current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdutil.Build(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			projects, err := app.Engine.Projects(cmd.Context(), false)
			if err != nil {
				return err
			}

			name := args[0]
			for _, p := range projects {
				if !strings.EqualFold(p.Name, name) {
					continue
				}

				fmt.Printf("%s  state: %s  compose file: %s\n",
					ui.Accent(p.Name), ui.State(string(p.State)), ui.Bool(p.HasComposeFile))
				if p.Warning != "" {
					fmt.Println(ui.WarnMsg("%s", p.Warning))
				}

				actions := make([]string, 0, len(p.AvailableActions))
				for action := range p.AvailableActions {
					actions = append(actions, action)
				}
				sort.Strings(actions)

				rows := make([][]string, len(actions))
				for i, action := range actions {
					rows[i] = []string{action, ui.Bool(p.AvailableActions[action])}
				}
				fmt.Println(ui.Table([]string{"Action", "Available"}, rows))
				return nil
			}
			return fmt.Errorf("no project named %q", name)
		},
	}
}
