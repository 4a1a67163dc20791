package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage background tasks on the server",
	Long:  `List, trigger and inspect background tasks (like policy source syncs). Requires an authenticated session (cedarlink login).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
