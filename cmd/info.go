package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show build information, local or of a remote server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f.ServerAddr() == "" {
			return infoLocally(cmd, args)
		}
		return infoRemote(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func infoRemote(cmd *cobra.Command, _ []string) error {
	cli, err := f.GetClient()
	if err != nil {
		return err
	}
	log.Debug().Msgf("Fetching build info from %s...", f.ServerAddr())
	info, correlation, err := cli.Info(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to fetch build info")
	}
	printInfo(info)
	return nil
}

func infoLocally(_ *cobra.Command, _ []string) error {
	info := buildinfo.GetBuildInfo()
	printInfo(&info)
	return nil
}

func printInfo(info *buildinfo.Info) {
	fmt.Println(bold("\n── Cedarlink Build Information ──"))
	fmt.Printf("  %s:  %s\n", faint("Service"), info.Service)
	fmt.Printf("  %s:  %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:   %s\n", faint("Commit"), info.CommitHash)
	fmt.Printf("  %s:    %s\n", faint("About"), info.About)
}
