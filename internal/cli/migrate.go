package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskhub/internal/app"
	"taskhub/internal/repositories"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Long:      `Runs the embedded SQL migrations against the configured database. Defaults to "up".`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func migrateDirection(args []string) string {
	if len(args) == 0 {
		return "up"
	}
	return args[0]
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := app.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	direction := migrateDirection(args)
	if err := repositories.Migrate(db.DB, direction); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", direction)
	return nil
}
