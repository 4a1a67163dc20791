package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Administrative audit commands",
	Long:  `View and inspect the audit log on the server. Requires an authenticated session (cedarlink login).`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
