package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/config"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/database"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/logs"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/repository"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/utils"
)

const cmdTimeout = 30 * time.Second

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance commands for the reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSchemaCommand())
	root.AddCommand(newCreateAdminCommand())
	root.AddCommand(newGrantCommand())
	return root
}

// withDB loads the tooling config, opens the database and runs fn with a
// bounded context.
func withDB(fn func(ctx context.Context, cfg config.Config, db *sql.DB) error) error {
	cfg := config.LoadTooling()
	logger := logs.New(cfg.Env, cfg.Log)

	db, err := database.Open(cfg.Database())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	if err := fn(ctx, cfg, db); err != nil {
		logger.Error("command failed", "err", err)
		return err
	}
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, _ config.Config, db *sql.DB) error {
				if err := database.Migrate(ctx, db); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations executed successfully.")
				return nil
			})
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL applied by migrate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, stmt := range database.Statements() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
			}
			return nil
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account with the ADMIN role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			email = strings.ToLower(strings.TrimSpace(email))
			if err := checkCredentials(email, password); err != nil {
				return err
			}
			return withDB(func(ctx context.Context, cfg config.Config, db *sql.DB) error {
				id, err := repository.NewUserRepo(db).Create(ctx, email, password, cfg.BcryptCost, model.RoleAdmin)
				if errors.Is(err, repository.ErrEmailExists) {
					return fmt.Errorf("%s already has an account; use grant to add the role", email)
				}
				if err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id %d).\n", email, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "password; defaults to $ADMIN_PASSWORD")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newGrantCommand() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a role to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToUpper(strings.TrimSpace(role))
			if role != model.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}
			return withDB(func(ctx context.Context, _ config.Config, db *sql.DB) error {
				users := repository.NewUserRepo(db)
				u, err := users.GetByEmail(ctx, email)
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("no account for %s", email)
				}
				if err != nil {
					return err
				}
				if err := users.GrantRole(ctx, u.ID, role); err != nil {
					return fmt.Errorf("grant role: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s.\n", role, u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "role to grant")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func checkCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid --email is required")
	}
	return utils.CheckPassword(password)
}
