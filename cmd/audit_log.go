package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/expr-lang/expr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/pkg/client"
)

var (
	auditLogAction string
	auditLogFilter string
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Long: `Retrieves the latest audit log entries from the server. Entries can be
filtered server-side by action, or client-side with an expression over
the entry fields (id, action, policy_id, template, ok, error, ...).`,
	Example: `  cedarlink audit log -n 50

  # Only failed link attempts
  cedarlink audit log --filter 'action == "template.link" && !ok'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:  uint(limit),
			Action: auditLogAction,
		})
		if err != nil {
			return logError(err, correlation, "failed to retrieve audit log")
		}

		if auditLogFilter != "" {
			if audits, err = filterAudits(audits, auditLogFilter); err != nil {
				return fmt.Errorf("applying filter: %w", err)
			}
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Action", "Policy", "OK", "Fingerprint", "Error",
		})

		for _, e := range audits {
			status := "YES"
			if !e.OK {
				status = "NO"
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.Action,
				e.PolicyID,
				status,
				truncate(e.SourceFingerprint, 20),
				truncate(e.Error, 40),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

// filterAudits evaluates a boolean expression against every entry.
func filterAudits(entries []core.AuditEntry, filter string) ([]core.AuditEntry, error) {
	program, err := expr.Compile(filter, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling expression: %w", err)
	}

	var out []core.AuditEntry
	for _, e := range entries {
		env := map[string]any{
			"id":          e.ID,
			"time":        e.Time,
			"action":      e.Action,
			"policy_id":   e.PolicyID,
			"fingerprint": e.SourceFingerprint,
			"template":    e.Template,
			"template_id": e.TemplateID,
			"principal":   e.Principal,
			"resource":    e.Resource,
			"ok":          e.OK,
			"error":       e.Error,
		}
		matched, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating expression: %w", err)
		}
		if matched == true {
			out = append(out, e)
		}
	}
	return out, nil
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogAction, "action", "", "Only show entries for this action")
	auditLogCmd.Flags().StringVar(&auditLogFilter, "filter", "", "Expression to filter entries client-side")
}
