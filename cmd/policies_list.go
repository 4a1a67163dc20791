package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var policiesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all policies stored on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving policies...")
		records, correlation, err := cli.ListPolicies(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list policies")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Kind", "Origin", "Template", "Source"})

		for _, rec := range records {
			t.AppendRow(table.Row{
				bold(rec.ID),
				rec.Kind,
				rec.Origin,
				rec.TemplateID,
				truncate(rec.Source, 60),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	policiesCmd.AddCommand(policiesListCmd)
}
