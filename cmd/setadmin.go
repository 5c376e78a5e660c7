package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/mongostore"
)

// setAdminCmd represents the set-admin command
var setAdminCmd = &cobra.Command{
	Use:   "set-admin <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
		db, err := mongostore.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		user, err := promote(cmd.Context(), db.Users(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
		return nil
	},
}

func promote(ctx context.Context, users store.Users, email string) (models.User, error) {
	user, err := users.SetRoleByEmail(ctx, models.NormalizeEmail(email), models.RoleAdmin)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("set role: %w", err)
	}
	return user, nil
}

func init() {
	rootCmd.AddCommand(setAdminCmd)
}
