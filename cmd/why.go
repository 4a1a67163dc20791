package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
)

var (
	whyTemplateID string
	whyPrincipal  string
	whyResource   string
	whyReplayID   string
)

var whyCmd = &cobra.Command{
	Use:   "why [SOURCE]",
	Short: "Explain why a template link succeeds or fails",
	Long: `Runs a slot-by-slot link trace and shows exactly which slot/filler
pairing is wrong: a declared slot without a filler, a filler for a slot
the template does not declare, or an invalid substituted policy.

SOURCE may be inline template text, a file path, or '-' for stdin. With
--server, a stored template (--template-id) or a past attempt from the
audit log (--replay) can be traced instead.

Note: against a server this command requires admin privileges (cedarlink login).`,
	Example: `  # Why does this link fail?
  cedarlink why ./admin.cedar --principal 'App::User::"alice"'

  # Replay a recorded link attempt
  cedarlink why --server http://localhost:8080 --replay abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src string
		if len(args) == 1 {
			var err error
			if src, err = readSource(args[0]); err != nil {
				return err
			}
		}

		if f.ServerAddr() == "" {
			if whyTemplateID != "" || whyReplayID != "" {
				return fmt.Errorf("--template-id and --replay require a server (use --server)")
			}
			if src == "" {
				return fmt.Errorf("template source required")
			}
			return whyLocally(src)
		}
		return whyRemote(cmd, src)
	},
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVar(&whyTemplateID, "template-id", "", "Id of a template stored on the server")
	f.bindFillerFlags(whyCmd.Flags(), &whyPrincipal, &whyResource)
	whyCmd.Flags().StringVar(&whyReplayID, "replay", "", "Correlation ID of an audit entry to replay")
}

func whyLocally(src string) error {
	frontend := f.GetFrontend()

	principal, err := optionalEntityUID(whyPrincipal)
	if err != nil {
		return logError(err, "", "invalid principal filler")
	}
	resource, err := optionalEntityUID(whyResource)
	if err != nil {
		return logError(err, "", "invalid resource filler")
	}

	trace := frontend.Trace(src, principal, resource)
	printTrace(&trace)
	return nil
}

func whyRemote(cmd *cobra.Command, src string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}

	trace, correlation, err := cli.ExplainLink(cmd.Context(), api.ExplainPayload{
		ReplayID:   whyReplayID,
		TemplateID: whyTemplateID,
		Src:        src,
		Principal:  whyPrincipal,
		Resource:   whyResource,
	})
	if err != nil {
		return logError(err, correlation, "explain failed")
	}

	printTrace(trace)
	return nil
}

func printTrace(trace *core.LinkTrace) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s", bold("Link Trace"))
	if trace.TemplateID != "" {
		fmt.Printf(" for template %s", bold(trace.TemplateID))
	}
	fmt.Println()
	fmt.Println(faint("---------------------------------------------------"))

	for _, res := range trace.SlotResults {
		icon := red("✖")
		if res.OK {
			icon = green("✔")
		}

		declared := "not declared"
		if res.InTemplate {
			declared = "declared"
		}
		filler := faint("(no filler)")
		if res.FillerSupplied {
			filler = res.Filler
		}

		fmt.Printf("%s Slot %s: %s, filler: %s\n", icon, bold(res.Slot), declared, filler)
		if res.Reason != "" {
			reason := res.Reason
			if res.OK {
				reason = faint(reason)
			} else {
				reason = yellow(reason)
			}
			fmt.Printf("    ↳ %s\n", reason)
		}
	}

	fmt.Println(faint("---------------------------------------------------"))
	if trace.Linked {
		fmt.Printf("Result: %s\n", bold(green("linked")))
		fmt.Println(trace.LinkedSource)
	} else {
		fmt.Printf("Result: %s\n", bold(red("rejected")))
		if trace.Error != "" {
			fmt.Printf("  %s\n", red(trace.Error))
		}
	}
	fmt.Println()
}
