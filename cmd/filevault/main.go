package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayoubd/filevault/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filevault",
	Short:   "File hierarchy service with token-session authentication",
	Long: `Filevault is a small file management service: users register, exchange
Basic credentials for a session token, and manage a folder/file/image
hierarchy whose blobs live on the local filesystem.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: FILEVAULT_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: filevault.db, env: FILEVAULT_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "blob storage directory (default: ./data, env: FILEVAULT_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("cache-path", "", "session cache directory (default: ./cache, env: FILEVAULT_CACHE_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
