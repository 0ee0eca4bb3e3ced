package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/phrazzld/wordpath-api/internal/service"
	"github.com/phrazzld/wordpath-api/internal/wordlist"
)

func (c *cli) ingest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: ingest takes exactly one directory", errUsage)
	}

	docs, err := service.ReadCorpusDir(args[0])
	if err != nil {
		return err
	}
	items, err := c.content.Ingest(ctx, docs)
	if err != nil {
		return err
	}

	for _, item := range items {
		fmt.Fprintf(c.out, "%s\t%.2f\n", item.Title, item.GradeLevel)
	}
	fmt.Fprintf(c.out, "Ingested %d documents\n", len(items))
	return nil
}

func (c *cli) words(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: words needs a subcommand (add, list, import)", errUsage)
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "add":
		if len(rest) == 0 {
			return fmt.Errorf("%w: words add needs at least one word", errUsage)
		}
		return c.addWords(ctx, rest)
	case "list":
		words, err := c.content.ListKnownWords(ctx, localLearner)
		if err != nil {
			return err
		}
		for _, w := range words {
			fmt.Fprintln(c.out, w)
		}
		return nil
	case "import":
		return c.importWords(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown words subcommand %q", errUsage, sub)
	}
}

func (c *cli) addWords(ctx context.Context, words []string) error {
	added, err := c.content.AddKnownWords(ctx, localLearner, words)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %d new words\n", added)
	return nil
}

func (c *cli) importWords(ctx context.Context, args []string) error {
	cfg := wordlist.DefaultImportConfig()
	fs := flag.NewFlagSet("words import", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.StringVar(&cfg.WordColumn, "column", cfg.WordColumn, "column letter holding the words")
	fs.StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "sheet name (default: first sheet)")
	fs.IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first row to read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: words import takes exactly one file", errUsage)
	}

	result, err := wordlist.ReadFile(fs.Arg(0), cfg)
	if err != nil {
		return err
	}
	c.logger.Info("word list read",
		slog.String("file", fs.Arg(0)),
		slog.Int("processed", result.TotalProcessed),
		slog.Int("skipped", result.Skipped))

	if len(result.Words) == 0 {
		fmt.Fprintln(c.out, "No words found")
		return nil
	}
	return c.addWords(ctx, result.Words)
}

func (c *cli) recommend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	level := fs.Float64("level", 0, "learner grade level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	levelSet := false
	fs.Visit(func(f *flag.Flag) { levelSet = levelSet || f.Name == "level" })
	if !levelSet {
		return fmt.Errorf("%w: recommend requires -level", errUsage)
	}

	item, err := c.content.RecommendByLevel(ctx, *level)
	if errors.Is(err, service.ErrNoContent) {
		fmt.Fprintln(c.out, "No content available")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Recommended content: %s\n", item.Title)
	fmt.Fprintf(c.out, "Grade level: %.2f\n", item.GradeLevel)
	fmt.Fprintln(c.out, "--- Transcript ---")
	fmt.Fprintln(c.out, item.Text)
	return nil
}

func (c *cli) recommendKnown(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: recommend-known takes no arguments", errUsage)
	}

	words, err := c.content.ListKnownWords(ctx, localLearner)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		fmt.Fprintln(c.out, "No known words stored. Add words with: langdb words add <word>...")
		return nil
	}

	match, err := c.content.RecommendByCoverage(ctx, localLearner)
	if errors.Is(err, service.ErrNoContent) {
		fmt.Fprintln(c.out, "No content available")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Recommended content: %s\n", match.Item.Title)
	fmt.Fprintf(c.out, "Known word coverage: %.1f%%\n", match.Coverage*100)
	fmt.Fprintln(c.out, "--- Transcript ---")
	fmt.Fprintln(c.out, match.Item.Text)
	return nil
}
