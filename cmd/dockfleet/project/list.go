package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"dockfleet/cmd/dockfleet/cmdutil"
	"dockfleet/cmd/dockfleet/ui"
	"dockfleet/internal/fleet"

	"github.com/spf13/cobra"
)

func listCmd(configPath *string) *cobra.Command {
	var bypassCache bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all compose projects, live and on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdutil.Build(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			projects, err := app.Engine.Projects(cmd.Context(), bypassCache)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println(ui.Muted("no compose projects found"))
				return nil
			}

			rows := make([][]string, len(projects))
			for i, p := range projects {
				rows[i] = []string{
					p.Name,
					ui.State(string(p.State)),
					serviceSummary(p),
					composeFileCell(p),
					warningCell(p),
				}
			}
			fmt.Println(ui.Table(
				[]string{"Project", "State", "Services", "File", "Notes"},
				rows,
			))

			if conflicts := app.Engine.ConflictErrors(); len(conflicts) > 0 {
				fmt.Println(ui.WarnMsg("%d project name conflict(s), run `dockfleet project conflicts`", len(conflicts)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&bypassCache, "rescan", false, "Bypass the discovery cache and rescan the filesystem")
	return cmd
}

func serviceSummary(p fleet.UnifiedProject) string {
	if len(p.Services) == 0 {
		return "-"
	}
	running := 0
	for _, s := range p.Services {
		if strings.EqualFold(s.State, "running") {
			running++
		}
	}
	return fmt.Sprintf("%d/%d running", running, len(p.Services))
}

func composeFileCell(p fleet.UnifiedProject) string {
	if !p.HasComposeFile {
		return ui.Muted("-")
	}
	return filepath.Base(filepath.Dir(p.ComposeFilePath)) + "/" + filepath.Base(p.ComposeFilePath)
}

func warningCell(p fleet.UnifiedProject) string {
	if p.Warning == "" {
		return ""
	}
	return ui.Warn(p.Warning)
}
