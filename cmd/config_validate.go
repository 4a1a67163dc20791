package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/validation"
)

// configValidateCmd validates the config file including every configured
// policy, template and link.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Loads the configuration file, parses every configured policy in its
declared mode and resolves every declared template link.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadServiceConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Configuration is invalid.")
			return err
		}

		records, err := validation.ValidatePolicies(f.GetFrontend(), cfg.Policies, cfg.Links)
		if err != nil {
			log.Fatal().Err(err).Msg("Configuration is invalid.")
			return err
		}

		log.Info().Msgf("Configuration is valid (%d policies).", len(records))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
