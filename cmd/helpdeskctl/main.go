// helpdeskctl is the operator CLI for out-of-band account administration:
// provisioning admin accounts and changing user roles.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helpdesk-platform/helpdesk-service/internal/auth"
	"github.com/helpdesk-platform/helpdesk-service/internal/config"
	"github.com/helpdesk-platform/helpdesk-service/internal/domain"
	"github.com/helpdesk-platform/helpdesk-service/internal/persistence"
	"github.com/helpdesk-platform/helpdesk-service/internal/repository"
	"github.com/helpdesk-platform/helpdesk-service/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "helpdeskctl",
	Short: "Operator tooling for the helpdesk service",
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account, or promote an existing account to admin",
	RunE:  runCreateAdmin,
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <email> <role>",
	Short: "Change an account's role (user, agent, admin)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetRole,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "admin@example.com", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin User", "admin display name")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(setRoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openUserRepo(ctx context.Context) (repository.UserRepository, *persistence.Postgres, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return nil, nil, nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, zap.NewNop())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return repository.NewUserRepository(pg.PoolHandle()), pg, cfg, nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	users, pg, cfg, err := openUserRepo(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	email := service.NormalizeEmail(adminEmail)
	hash, err := auth.HashPassword(adminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.PasswordHash = hash
		existing.Name = adminName
		if err := users.Update(ctx, existing); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		log.Printf("promoted existing account to admin: %s", email)
	case err == pgx.ErrNoRows:
		admin := &domain.User{
			Email:        email,
			PasswordHash: hash,
			Name:         adminName,
			Role:         domain.RoleAdmin,
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Printf("admin account created: %s", email)
	default:
		return fmt.Errorf("lookup user: %w", err)
	}
	return nil
}

func runSetRole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	email := service.NormalizeEmail(args[0])
	role := domain.Role(args[1])
	if !role.Valid() {
		return fmt.Errorf("invalid role %q: must be user, agent, or admin", args[1])
	}

	users, pg, _, err := openUserRepo(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("no account with email %s", email)
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	log.Printf("role updated: %s -> %s", email, role)
	return nil
}
