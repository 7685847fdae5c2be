package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; production sets real environment variables
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "notesd",
		Short: "Multi-tenant notes API",
		Long:  "Run the tenant-isolated notes API and manage its database schema",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
