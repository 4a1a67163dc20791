package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksLogsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "Show the captured log of a background task's last run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Fetching log of task '%s'...", name)
		entries, err := cli.GetTaskLogs(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("fetching task log: %w", err)
		}

		fmt.Println(bold(fmt.Sprintf("\n── Task Log: %s ──", name)))
		if len(entries) == 0 {
			fmt.Println(faint("  no log entries captured yet"))
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("  %s %s %s\n",
				faint(entry.Time.Format("15:04:05")),
				levelBadge(entry.Level),
				entry.Message)
		}
		return nil
	},
}

func levelBadge(level string) string {
	switch level {
	case "debug":
		return faint("DBG")
	case "warn":
		return color.YellowString("WRN")
	case "error":
		return color.RedString("ERR")
	default:
		return color.GreenString("INF")
	}
}

func init() {
	tasksCmd.AddCommand(tasksLogsCmd)
}
