package cli

import (
	"github.com/spf13/cobra"

	"order-composer/internal/app"
	"order-composer/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the composer gRPC service",
		Long:  "Run the composer gRPC service. Settings come from the environment and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return app.New(cfg).Run()
		},
	}
}
