// Command langdb manages a local reading library: it ingests transcript
// files, keeps a list of known words and recommends content by grade level or
// by known-word coverage.
//
// Usage:
//
//	langdb [-db path] ingest <dir>
//	langdb [-db path] words add <word>...
//	langdb [-db path] words list
//	langdb [-db path] words import [-column A] [-sheet name] [-start-row 2] <file>
//	langdb [-db path] recommend -level <grade>
//	langdb [-db path] recommend-known
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/platform/sqlite"
	"github.com/phrazzld/wordpath-api/internal/service"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// localLearner owns the known words of the local library.
var localLearner = uuid.MustParse("00000000-0000-4000-8000-000000000001")

const defaultDBPath = "data/content.db"

// errUsage marks command line mistakes; main exits with status 2 for them.
var errUsage = errors.New("usage error")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "langdb:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// cli carries the output streams and the content service of one invocation.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	content service.ContentService
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("langdb", flag.ContinueOnError)
	global.SetOutput(stderr)
	dbPath := global.String("db", envOr("LANGDB_PATH", defaultDBPath), "path to the SQLite library")
	logLevel := global.String("log-level", envOr("LANGDB_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	global.Usage = func() { printUsage(stderr) }
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return fmt.Errorf("%w: missing command", errUsage)
	}

	log := logger.New(stderr, *logLevel)

	if *dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
			return fmt.Errorf("failed to create library directory: %w", err)
		}
	}
	db, err := sqlite.Open(ctx, *dbPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	content, err := service.NewContentService(
		sqlite.NewContentStore(db, log),
		sqlite.NewKnownWordStore(db, log),
		nil,
		store.NewTxRunner(db.DB),
		log,
	)
	if err != nil {
		return err
	}

	c := &cli{out: stdout, errOut: stderr, logger: log, content: content}

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "ingest":
		return c.ingest(ctx, cmdArgs)
	case "words":
		return c.words(ctx, cmdArgs)
	case "recommend":
		return c.recommend(ctx, cmdArgs)
	case "recommend-known":
		return c.recommendKnown(ctx, cmdArgs)
	default:
		printUsage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: langdb [-db path] [-log-level level] <command> [args]

commands:
  ingest <dir>              add every .txt file in dir to the library
  words add <word>...       mark words as known
  words list                print known words
  words import <file>       mark words from a .xlsx, .csv or .txt file as known
  recommend -level <grade>  recommend content one grade above level
  recommend-known           recommend content with the most known words`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
