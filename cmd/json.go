package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/serialize"
)

var jsonPolicyID string

var jsonCmd = &cobra.Command{
	Use:   "json [SOURCE]",
	Short: "Serialize a static policy into its JSON document form",
	Long: `Serializes a static policy into its compact JSON document form.
Templates are refused: link their slots first.

SOURCE may be inline policy text, a file path, or '-' for stdin.
Alternatively pass --policy-id to serialize a policy stored on a server.`,
	Example: `  cedarlink json 'permit(principal, action, resource);'

  cedarlink json --server http://localhost:8080 --policy-id policy1`,
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
			if jsonPolicyID != "" {
				return fmt.Errorf("--policy-id requires a server (use --server)")
			}
			if src == "" {
				return fmt.Errorf("policy source required")
			}
			return jsonLocally(src)
		}
		return jsonRemote(cmd, src)
	},
}

func init() {
	rootCmd.AddCommand(jsonCmd)

	jsonCmd.Flags().StringVar(&jsonPolicyID, "policy-id", "", "Id of a policy stored on the server")
}

func jsonLocally(src string) error {
	policy, err := core.NewPolicy(src, "")
	if err != nil {
		return logError(err, "", "invalid policy")
	}
	out, err := serialize.ToJSON(policy)
	if err != nil {
		return logError(err, "", "serialization failed")
	}
	fmt.Println(out)
	return nil
}

func jsonRemote(cmd *cobra.Command, src string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}

	log.Debug().Msg("Serializing policy on server...")
	out, correlation, err := cli.ToJSON(cmd.Context(), api.JSONPayload{
		PolicyID: jsonPolicyID,
		Src:      src,
	})
	if err != nil {
		return logError(err, correlation, "serialization failed")
	}
	fmt.Println(out)
	return nil
}
