// Package token implements the `token` subcommand minting a bearer
// token for a host runtime instance.
package token

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mpc-sdk/multi-factor-accounts/internal/auth"
	"github.com/mpc-sdk/multi-factor-accounts/internal/config"
)

func New() *cobra.Command {
	var hostID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a host runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			if cfg.Auth.Secret == "" {
				return errors.New("MFA_AUTH_SECRET is required")
			}

			jwt := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)
			token, err := jwt.Generate(hostID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&hostID, "host-id", "default", "identifier of the host runtime")
	return cmd
}
