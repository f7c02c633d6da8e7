package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/ecomlab/sale-recorder/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sale-recorder",
	Short: "Transactional sale recording service with a reporting query layer",
}

func main() {
	rootCmd.AddCommand(serveCmd, seedCmd, reportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB opens the configured backend. The sqlite backend is limited to one
// connection so concurrent writers queue at the pool instead of hitting
// SQLITE_BUSY.
func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	if cfg.DB.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DB.Driver, err)
	}
	return db, nil
}
