package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the server's background tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching background tasks...")
		statuses, err := cli.ListTasks(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Running", "Last Run", "Next Run", "Result"})

		for _, status := range statuses {
			running := faint("no")
			if status.Running {
				running = color.BlueString("yes")
			}

			lastRun := faint("never")
			if !status.LastRun.IsZero() {
				lastRun = time.Since(status.LastRun).Round(time.Second).String() + " ago"
			}

			nextRun := faint("n/a")
			if !status.NextRun.IsZero() {
				nextRun = "in " + time.Until(status.NextRun).Round(time.Second).String()
			}

			result := faint("n/a")
			switch {
			case status.LastResult == "success":
				result = greenCheck + " success"
			case status.LastResult != "":
				result = redCross + " " + truncate(status.LastResult, 40)
			}

			t.AppendRow(table.Row{
				bold(status.Name),
				running,
				lastRun,
				nextRun,
				result,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}
