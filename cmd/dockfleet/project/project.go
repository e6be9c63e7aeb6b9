// Package project holds the compose-project subcommands.
package project

import (
	"github.com/spf13/cobra"
)

// Cmd returns the project command group.
func Cmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Inspect reconciled compose projects",
	}
	cmd.AddCommand(listCmd(configPath))
	cmd.AddCommand(conflictsCmd(configPath))
	cmd.AddCommand(actionsCmd(configPath))
	cmd.AddCommand(refreshCmd(configPath))
	return cmd
}
