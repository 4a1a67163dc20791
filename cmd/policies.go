package cmd

import (
	"github.com/spf13/cobra"
)

var policiesCmd = &cobra.Command{
	Use:     "policies",
	Aliases: []string{"policy"},
	Short:   "Interact with policies stored on a server",
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
