package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/girder-hq/girder/internal/infrastructure/config"
	"github.com/girder-hq/girder/internal/infrastructure/database"
	"github.com/girder-hq/girder/internal/infrastructure/migration"
	"github.com/girder-hq/girder/internal/shared/logger"
)

var (
	env            string
	migrationsPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Run pending migrations, roll them back, or show the current schema version.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "./migrations", "Path to migration files")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runner.Up(); err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := runner.Down(); err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			fmt.Println("migration rolled back")
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner()
			if err != nil {
				return err
			}
			defer cleanup()

			version, dirty, err := runner.Version()
			if err != nil {
				return fmt.Errorf("failed to read migration version: %w", err)
			}
			fmt.Printf("version: %d dirty: %v\n", version, dirty)
			return nil
		},
	}
}

func buildRunner() (*migration.Runner, func(), error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	runner := migration.NewRunner(database.Get(), migrationsPath, logger.NewLogger())
	cleanup := func() {
		_ = database.Close()
	}
	return runner, cleanup, nil
}
