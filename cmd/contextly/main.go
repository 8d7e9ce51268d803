package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"contextly/internal/backend"
	"contextly/internal/cli"
	"contextly/internal/config"
	"contextly/internal/export"
	"contextly/internal/logger"
	"contextly/internal/session"
	"contextly/internal/validation"
)

func main() {
	cfg := config.Load()

	backendURL := flag.String("backend", cfg.Backend.BaseURL, "base URL of the answer backend")
	exportDir := flag.String("out", cfg.Export.Dir, "directory exports are written to")
	policy := flag.String("commit", cfg.Upload.CommitPolicy, "when uploaded files join the session: batch or per_file")
	verbose := flag.BoolP("verbose", "v", false, "log to stderr")
	flag.Parse()

	cfg.Backend.BaseURL = *backendURL

	log := zap.NewNop()
	if *verbose {
		log = logger.NewWithConsole(cfg.Log, os.Stderr)
	} else if cfg.Log.FilePath != "" {
		log = logger.NewWithConsole(cfg.Log, nil)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := backend.New(cfg.Backend)
	layout := export.DefaultLayout()
	layout.Title = cfg.Export.Title
	layout.WrapWidth = cfg.Export.WrapWidth

	sess := session.New(client, client, export.NewPDFRenderer(layout, cfg.Export.FileName),
		session.WithCommitPolicy(session.ParseCommitPolicy(*policy)),
		session.WithLogger(log),
	)

	shell := cli.New(sess, validation.New(cfg.Upload.AcceptedExtensions), *exportDir)
	if err := shell.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
