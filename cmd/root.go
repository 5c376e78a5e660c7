package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront backend: accounts, carts, catalog and inquiries",
	Long: `Storefront backend. Usage:

	storefront server
	storefront seed --file data/products.json
	storefront set-admin someone@example.com
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
