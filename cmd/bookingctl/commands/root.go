// Package commands implements the bookingctl command tree.
package commands

import (
	"github.com/spf13/cobra"

	"bookingform/internal/config"
)

var (
	envFile string
	cfg     *config.Config
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bookingctl",
		Short:        "Booking form server and terminal client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if envFile != "" {
				cfg, err = config.Load(envFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	root.AddCommand(serveCmd(), fillCmd(), submissionsCmd())
	return root
}
