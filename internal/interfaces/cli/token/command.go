package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutystream/scouty/internal/infrastructure/auth"
	"github.com/scoutystream/scouty/internal/infrastructure/config"
	"github.com/scoutystream/scouty/internal/shared/authorization"
)

var (
	env     string
	subject string
	role    string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator bearer token",
		Long:  `Sign a bearer token for the admin and upload endpoints with the configured JWT secret.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Token subject, e.g. an operator name (required)")
	cmd.Flags().StringVarP(&role, "role", "r", string(authorization.RoleAdmin), "Role: admin or uploader")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	token, expiresIn, err := jwtSvc.Generate(subject, authorization.UserRole(role))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "role=%s expires_in=%ds\n", role, expiresIn)
	return nil
}
