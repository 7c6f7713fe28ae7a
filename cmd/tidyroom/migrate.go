package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tidyroom/internal/bootstrap"
	"github.com/bryanwahyu/tidyroom/internal/infra/db/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL schema for the mysql or postgres history backend",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	u, err := cfg.MigrateURL()
	if err != nil {
		return err
	}
	d := migrations.Dialect(cfg.History.Backend)

	if migrateDown {
		if err := migrations.Down(d, u); err != nil {
			return err
		}
		fmt.Println("migrations rolled back")
		return nil
	}
	if err := bootstrap.Migrate(cfg); err != nil {
		return err
	}
	v, dirty, err := migrations.Version(d, u)
	if err != nil {
		return err
	}
	fmt.Printf("schema at version %d (dirty=%t)\n", v, dirty)
	return nil
}
