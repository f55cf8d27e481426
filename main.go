package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mpc-sdk/multi-factor-accounts/cmd/server"
	"github.com/mpc-sdk/multi-factor-accounts/cmd/token"
)

func main() {
	root := &cobra.Command{
		Use:   "multi-factor-accounts",
		Short: "Coordination layer and key share keyring for threshold signature accounts",
	}
	root.AddCommand(server.New(), token.New())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
