package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library-service/config"
	"library-service/library"
)

var (
	envFile  string
	dbDriver string
	dbDSN    string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "library-service",
	Short: "Library management backend",
	Long: `library-service runs the library HTTP API: catalog browsing, loans,
renewals, reviews, support messages and fee payments.

Settings come from the environment (LIBRARY_*, STRIPE_SECRET_KEY), an optional
.env file, and the flags below, in increasing order of precedence.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "database driver: sqlite3, postgres or mysql")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "database DSN (file path for sqlite3)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.DBDriver = dbDriver
	}
	if flags.Changed("db") {
		cfg.DBDSN = dbDSN
	}
	if flags.Changed("log-level") {
		if _, err := logrus.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := library.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", db.Dialect())
		return nil
	},
}
