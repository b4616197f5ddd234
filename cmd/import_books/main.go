package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-service/config"
	"library-service/library"
)

var (
	envFile string
	reset   bool
)

var importCmd = &cobra.Command{
	Use:   "import_books CATALOG.json",
	Short: "Import a JSON catalog of books",
	Long: `Import a JSON array of books into the configured database.

Each entry has title, author, description, copies, category and img. The
import stops at the first invalid entry; books added before it are kept.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runImport,
}

func init() {
	importCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	importCmd.Flags().BoolVar(&reset, "reset", false, "delete an existing sqlite database before importing")
}

func main() {
	if err := importCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if reset {
		if err := removeSQLiteFiles(cfg); err != nil {
			return err
		}
	}

	manager, err := library.NewLibraryManager(library.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
		Policy: cfg.Policy(),
		Logger: cfg.Logger(),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer manager.Close()

	out := cmd.OutOrStdout()
	books, err := manager.ImportCatalogFile(context.Background(), args[0])
	fmt.Fprintf(out, "\nImported %d books\n", len(books))
	if len(books) > 0 {
		fmt.Fprintf(out, "%-5s %-30s %-25s %-7s %s\n", "ID", "Title", "Author", "Avail", "Category")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, b := range books {
			fmt.Fprintln(out, library.PrettyBook(b))
		}
	}
	return err
}

func removeSQLiteFiles(cfg *config.Config) error {
	switch cfg.DBDriver {
	case "sqlite3", "sqlite", "":
	default:
		return fmt.Errorf("--reset only supports sqlite, not %s", cfg.DBDriver)
	}
	for _, suffix := range []string{"", "-shm", "-wal"} {
		if err := os.Remove(cfg.DBDSN + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", cfg.DBDSN+suffix, err)
		}
	}
	return nil
}
