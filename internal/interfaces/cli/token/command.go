package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zenthea/sessionguard/internal/infrastructure/auth"
	"github.com/zenthea/sessionguard/internal/infrastructure/config"
	"github.com/zenthea/sessionguard/internal/shared/authorization"
)

var (
	sessionID string
	userID    string
	tenantID  string
	role      string
	ttl       time.Duration
)

// NewCommand issues access tokens signed with the configured secret, for local
// testing without the host platform.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE:  run,
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (random when empty)")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (required)")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&role, "role", string(authorization.RoleUser), "Role: admin, tenant_admin or user")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	r := authorization.UserRole(role)
	if !r.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, nil)
	tok, err := svc.Generate(sessionID, userID, tenantID, r, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
