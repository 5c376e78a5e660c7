package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/mongostore"
)

var seedFile string

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the product catalog with the contents of a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
		log := logger.New(cfg.LogLevel, cfg.LogPretty)

		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()

		db, err := mongostore.Connect(cmd.Context(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())
		if err := db.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}

		n, err := seedCatalog(cmd.Context(), db.Products(), f, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
		return nil
	},
}

func seedCatalog(ctx context.Context, products store.Products, r io.Reader, log zerolog.Logger) (int, error) {
	var items []models.Product
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	n, err := services.NewCatalogService(products, log).Seed(ctx, items)
	if err != nil {
		return n, fmt.Errorf("seed failed: %w", err)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "data/products.json", "path to a JSON array of products")
}
