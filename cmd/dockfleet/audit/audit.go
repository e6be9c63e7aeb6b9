// Package audit exposes the reconcile audit trail on the CLI.
package audit

import (
	"fmt"
	"time"

	"dockfleet/cmd/dockfleet/cmdutil"
	"dockfleet/cmd/dockfleet/ui"

	"github.com/spf13/cobra"
)

// Cmd returns the audit command group.
func Cmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the reconcile audit trail",
	}
	cmd.AddCommand(listCmd(configPath))
	return cmd
}

func listCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show recent audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdutil.Build(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Audit == nil {
				return fmt.Errorf("audit store unavailable under %s", app.Config.DataDir)
			}

			entries, err := app.Audit.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(ui.Muted("no audit entries"))
				return nil
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				subject := e.Subject
				if subject == "" {
					subject = "-"
				}
				rows[i] = []string{
					e.CreatedAt.Local().Format(time.DateTime),
					e.Operation,
					subject,
					e.Detail,
				}
			}
			fmt.Println(ui.Table([]string{"When", "Operation", "Subject", "Detail"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}
