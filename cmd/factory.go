package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixzheng98/cedarlink/internal/cliconfig"
	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/link"
	"github.com/felixzheng98/cedarlink/pkg/client"
)

var f = NewFactory()

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// ServerAddr returns the configured server address, or empty when the
// command should run locally.
func (f *Factory) ServerAddr() string {
	return viper.GetString(ServerAddrKey)
}

// GetClient returns an authenticated HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.ServerAddr()
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set CEDARLINK_ADDR)")
	}

	var token string
	if cfg, err := cliconfig.Load(); err == nil {
		if cred, err := cfg.GetCredential(server); err == nil { // token prio 1: saved credential
			token = cred.Token
		} else if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	}

	if envToken := os.Getenv("CEDARLINK_TOKEN"); envToken != "" { // token prio 2: env var
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

// GetFrontend returns the local language frontend for offline operations.
func (f *Factory) GetFrontend() *link.Validator {
	return link.NewValidator()
}

// bindFillerFlags registers the slot filler flags shared by the link and
// why commands.
func (f *Factory) bindFillerFlags(flags *pflag.FlagSet, principal, resource *string) {
	flags.StringVarP(principal, "principal", "p", "", `Principal slot filler, e.g. 'App::User::"alice"'`)
	flags.StringVarP(resource, "resource", "r", "", `Resource slot filler, e.g. 'App::Folder::"docs"'`)
}

func (f *Factory) LoadServiceConfig() (*config.Config, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("configuration file not specified (use --config)")
	}
	return config.Load(cfgFile)
}
