package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/infrastructure/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func tokenCmd(a *app) *cobra.Command {
	var (
		tenant   string
		user     string
		username string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		Long: `Token signs an access token with jwt.secret so the document endpoints
can be called without the identity provider.`,
		Example: "  voucherctl token --tenant 5d0c... --user 9a1b... --ttl 1h",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			if len(a.cfg.JWT.Secret) == 0 {
				return fmt.Errorf("jwt.secret is not configured")
			}

			token, expiresAt, err := auth.NewJWTService(a.cfg.JWT).IssueAccessToken(auth.IssueTokenInput{
				TenantID: tenantID,
				UserID:   userID,
				Username: username,
				TTL:      ttl,
			})
			if err != nil {
				return err
			}
			a.log.Debug("Issued access token",
				zap.String("tenant_id", tenantID.String()),
				zap.Time("expires_at", expiresAt),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n# expires %s\n", token, expiresAt.Format(time.RFC3339))
			return err
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "organization id the token acts for")
	cmd.Flags().StringVar(&user, "user", "", "user id (default: random)")
	cmd.Flags().StringVar(&username, "username", "", "optional username claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: jwt.access_token_expiration)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
