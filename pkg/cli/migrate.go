package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harleysato/mailtriage/pkg/repository/sqlite"
	"github.com/harleysato/mailtriage/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var dbPath string

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create or update the SQLite schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db-path",
				Usage:       "Path to the SQLite database file",
				Value:       "mailtriage.db",
				Sources:     cli.EnvVars("MAILTRIAGE_DB_PATH"),
				Destination: &dbPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration", "path", dbPath)

			repo, err := sqlite.New(dbPath)
			if err != nil {
				return goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close database", "error", err.Error())
				}
			}()

			if err := repo.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}

			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}
