package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/core"
)

var (
	linkTemplateID string
	linkPrincipal  string
	linkResource   string
	linkID         string
	linkPublish    bool
)

var linkCmd = &cobra.Command{
	Use:   "link [SOURCE]",
	Short: "Link a template's slots with concrete entities",
	Long: `Substitutes the given entity UIDs into the template's slots and prints
the resulting static policy. The supplied fillers must match the
template's slot set exactly.

SOURCE may be inline template text, a file path, or '-' for stdin.
Alternatively pass --template-id to link a template stored on a server.`,
	Example: `  # Link a local template file
  cedarlink link ./admin.cedar --principal 'App::User::"alice"'

  # Link a stored template on a remote server
  cedarlink link --server http://localhost:8080 --template-id admin \
    --principal 'App::User::"alice"' --publish`,
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
			if linkTemplateID != "" {
				return fmt.Errorf("--template-id requires a server (use --server)")
			}
			if src == "" {
				return fmt.Errorf("template source required")
			}
			return linkLocally(src)
		}
		return linkRemote(cmd, src)
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)

	linkCmd.Flags().StringVar(&linkTemplateID, "template-id", "", "Id of a template stored on the server")
	f.bindFillerFlags(linkCmd.Flags(), &linkPrincipal, &linkResource)
	linkCmd.Flags().StringVar(&linkID, "id", "", "Id of the linked policy (generated when empty)")
	linkCmd.Flags().BoolVar(&linkPublish, "publish", false, "Store the linked policy on the server (remote only)")
}

func linkLocally(src string) error {
	frontend := f.GetFrontend()

	principal, err := optionalEntityUID(linkPrincipal)
	if err != nil {
		return logError(err, "", "invalid principal filler")
	}
	resource, err := optionalEntityUID(linkResource)
	if err != nil {
		return logError(err, "", "invalid resource filler")
	}

	linked, err := frontend.Link(src, principal, resource)
	if err != nil {
		return logError(err, "", "link rejected")
	}

	logSuccess("template linked")
	fmt.Println(linked)
	return nil
}

func linkRemote(cmd *cobra.Command, src string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}

	log.Debug().Msg("Linking template on server...")
	resp, correlation, err := cli.Link(cmd.Context(), api.LinkPayload{
		TemplateID: linkTemplateID,
		Src:        src,
		Principal:  linkPrincipal,
		Resource:   linkResource,
		ID:         linkID,
		Publish:    linkPublish,
	})
	if err != nil {
		return logError(err, correlation, "link rejected")
	}

	logSuccess("template linked as %s", bold(resp.ID))
	fmt.Println(resp.Source)
	return nil
}

func optionalEntityUID(s string) (*core.EntityUID, error) {
	if s == "" {
		return nil, nil
	}
	uid, err := core.ParseEntityUID(s)
	if err != nil {
		return nil, err
	}
	return &uid, nil
}
