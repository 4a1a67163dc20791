package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
)

var (
	parseTemplate bool
	parseID       string
	parsePublish  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse SOURCE",
	Short: "Parse a policy or template and print its canonical form",
	Long: `Validates a policy in static mode (no slots allowed) or, with --template,
in template mode (at least one slot required) and prints the canonical
re-serialized policy text.

SOURCE may be inline policy text, a file path, or '-' for stdin.`,
	Example: `  # Validate a static policy inline
  cedarlink parse 'permit(principal, action, resource);'

  # Validate a template from a file
  cedarlink parse --template ./admin.cedar

  # Validate and publish on a remote server
  cedarlink parse --server http://localhost:8080 --publish ./admin.cedar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}

		if f.ServerAddr() == "" {
			return parseLocally(src)
		}
		return parseRemote(cmd, src)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseTemplate, "template", "t", false, "Parse in template mode")
	parseCmd.Flags().StringVar(&parseID, "id", "", "Policy id (generated when empty)")
	parseCmd.Flags().BoolVar(&parsePublish, "publish", false, "Store the policy on the server (remote only)")
}

func parseLocally(src string) error {
	frontend := f.GetFrontend()

	var (
		policy *core.Policy
		err    error
	)
	if parseTemplate {
		policy, err = core.ParsePolicyTemplate(frontend, src)
	} else {
		policy, err = core.ParseStaticPolicy(frontend, src)
	}
	if err != nil {
		return logError(err, "", "policy is invalid")
	}

	logSuccess("policy is valid")
	fmt.Println(policy.String())
	return nil
}

func parseRemote(cmd *cobra.Command, src string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}

	log.Debug().Msg("Parsing policy on server...")
	resp, correlation, err := cli.Parse(cmd.Context(), api.ParsePayload{
		Src:      src,
		Template: parseTemplate,
		ID:       parseID,
		Publish:  parsePublish,
	})
	if err != nil {
		return logError(err, correlation, "policy is invalid")
	}

	logSuccess("policy %s is valid (%s)", bold(resp.ID), resp.Kind)
	fmt.Println(resp.Source)
	return nil
}
