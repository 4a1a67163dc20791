package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/pkg/client"
)

var auditInspectCmd = &cobra.Command{
	Use:     "inspect CORRELATION-ID",
	Short:   "Show full details of a specific audit log entry",
	Example: `  cedarlink audit inspect abc123-def456-ghi789`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correlationID := args[0]
		if correlationID == "" {
			return fmt.Errorf("correlation ID cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving entry with correlation ID '%s'...", correlationID)
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         1,
			CorrelationID: correlationID,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log entry")
		}
		if len(audits) == 0 {
			log.Warn().Str("correlation_id", correlationID).Msg("no audit log entries found")
			return nil
		}

		entry := audits[0]

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		printKV := func(key string, val any) {
			fmt.Printf("  %-26s %v\n", faint(key)+":", val)
		}

		status := green("ok")
		if !entry.OK {
			status = red("failed")
		}

		fmt.Println(bold("\n── Audit Entry ──"))
		printKV("Correlation ID", correlationID)
		printKV("Time", entry.Time.Local().Format(time.RFC1123))
		printKV("Action", entry.Action)
		printKV("Outcome", status)

		fmt.Println(bold("\n── Policy ──"))
		if entry.PolicyID != "" {
			printKV("Policy ID", bold(entry.PolicyID))
		} else {
			printKV("Policy ID", faint("(none)"))
		}
		if entry.SourceFingerprint != "" {
			printKV("Fingerprint", entry.SourceFingerprint)
		} else {
			printKV("Fingerprint", faint("(none)"))
		}
		printKV("Template Mode", entry.Template)

		if entry.Action == "template.link" {
			fmt.Println(bold("\n── Link ──"))
			if entry.TemplateID != "" {
				printKV("Template", entry.TemplateID)
			} else {
				printKV("Template", faint("(inline)"))
			}
			if entry.Principal != "" {
				printKV("Principal Filler", entry.Principal)
			} else {
				printKV("Principal Filler", faint("(absent)"))
			}
			if entry.Resource != "" {
				printKV("Resource Filler", entry.Resource)
			} else {
				printKV("Resource Filler", faint("(absent)"))
			}
		}

		if entry.Error != "" || entry.Stacktrace != "" {
			fmt.Println(bold("\n── Failure ──"))
			if entry.Error != "" {
				printKV("Error Message", red(entry.Error))
			}
			if entry.Stacktrace != "" {
				printKV("Stacktrace", red(entry.Stacktrace))
			}
		}
		fmt.Println()

		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditInspectCmd)
}
