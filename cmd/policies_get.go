package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var policiesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a single policy stored on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if id == "" {
			return fmt.Errorf("policy id cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		rec, correlation, err := cli.GetPolicy(cmd.Context(), id)
		if err != nil {
			return logError(err, correlation, "failed to get policy")
		}

		fmt.Println(bold("\n── Policy ──"))
		fmt.Printf("  %s:       %s\n", faint("ID"), rec.ID)
		fmt.Printf("  %s:     %s\n", faint("Kind"), rec.Kind)
		fmt.Printf("  %s:   %s\n", faint("Origin"), rec.Origin)
		if rec.TemplateID != "" {
			fmt.Printf("  %s: %s\n", faint("Template"), rec.TemplateID)
		}
		fmt.Println()
		fmt.Println(rec.Source)
		return nil
	},
}

var policiesRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Delete a policy stored on the server",
	Long:    `Deletes a stored policy. Requires admin privileges (cedarlink login).`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if id == "" {
			return fmt.Errorf("policy id cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		correlation, err := cli.RemovePolicy(cmd.Context(), id)
		if err != nil {
			return logError(err, correlation, "failed to remove policy")
		}

		logSuccess("removed policy %s", bold(id))
		return nil
	},
}

func init() {
	policiesCmd.AddCommand(policiesGetCmd)
	policiesCmd.AddCommand(policiesRemoveCmd)
}
