package main

import (
	"context"
	"fmt"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/api/service"
	"civiclink/pkg/client"
	"civiclink/pkg/config"
	"civiclink/pkg/log"
	"civiclink/pkg/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFilename = "config.yaml"

type options struct {
	configFilename string
	apiURL         string
	token          string
}

func rootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "civiclink",
		Short:         "CivicLink administration and API client",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	v := viper.New()
	v.SetEnvPrefix("CIVICLINK")
	v.AutomaticEnv()

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFilename, "config", defaultConfigFilename, "server configuration file, used by commands that open the store")
	flags.StringVar(&opts.apiURL, "api", "http://localhost:5000", "CivicLink API base URL")
	flags.StringVar(&opts.token, "token", "", "bearer token for API calls (env CIVICLINK_TOKEN)")
	_ = v.BindPFlag("api_url", flags.Lookup("api"))
	_ = v.BindPFlag("token", flags.Lookup("token"))

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		log.InitializeConsoleLogger()
		opts.apiURL = v.GetString("api_url")
		opts.token = v.GetString("token")
		return nil
	}

	cmd.AddCommand(
		userCommand(opts),
		claimsCommand(opts),
		translationsCommand(opts),
	)

	return cmd
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL, o.token)
}

// accounts opens the configured store directly for administrative commands
func (o *options) accounts(ctx context.Context) (*service.AccountService, repository.Repository, error) {
	cfg, err := config.ReadConfig(o.configFilename)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading config, %w", err)
	}

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s storage, %w", cfg.Storage.Driver, err)
	}

	tokens := auth.NewTokens(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	return service.NewAccountService(repo, tokens), repo, nil
}
