package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cerealbot/cmd"
	"cerealbot/config"
	"cerealbot/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cerealbot",
		Usage: "Cereal Bot, a community bot for Discord servers",
		Before: func(*cli.Context) error {
			// Migrations read DATABASE_URL from .env as well
			_ = godotenv.Load()
			return nil
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect to Discord and serve commands",
				Action: runBot,
			},
			newMigrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBot(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.ConfigureLogging(cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Run(ctx)
}

func newMigrateCommand() *cli.Command {
	databaseURL := func(c *cli.Context) string {
		return database.ConstructDatabaseURL(c.String("database-url"), c.String("database-name"))
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "postgres connection string",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "database-name",
				Usage:   "database appended to the connection string",
				EnvVars: []string{"DATABASE_NAME"},
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return database.MigrateUp(databaseURL(c))
				},
			},
			{
				Name:      "down",
				Usage:     "roll back migrations",
				ArgsUsage: "[steps]",
				Action: func(c *cli.Context) error {
					steps := "1"
					if c.Args().Present() {
						steps = c.Args().First()
					}
					return database.MigrateDown(databaseURL(c), steps)
				},
			},
			{
				Name:  "status",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					return database.MigrateStatus(databaseURL(c))
				},
			},
		},
	}
}
