// Package main implements the wordpath API server, which tracks learners'
// vocabulary mastery and recommends reading content and videos.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/joho/godotenv"

	"github.com/phrazzld/wordpath-api/internal/config"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/platform/postgres"
)

// options holds the command line flags.
type options struct {
	envFile string
	migrate string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.envFile, "env-file", ".env", "path to an optional .env file")
	flags.StringVar(&opts.migrate, "migrate", "",
		fmt.Sprintf("run a migration command and exit (one of %v)", postgres.MigrationCommands))
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.migrate != "" && !validMigrationCommand(opts.migrate) {
		return options{}, fmt.Errorf("unknown migration command %q", opts.migrate)
	}
	return opts, nil
}

func validMigrationCommand(cmd string) bool {
	for _, c := range postgres.MigrationCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// loadEnvFile loads path into the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if err := loadEnvFile(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", postgres.MaskURL(cfg.Database.URL),
		"redis_configured", cfg.Cache.RedisURL != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, opts.migrate, log)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.startHTTPServer(ctx, app.setupRouter())
}
