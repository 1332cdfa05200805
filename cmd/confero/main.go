// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/confero"
	"github.com/poiesic/confero/match"
	"github.com/poiesic/confero/precompute"
	"github.com/poiesic/confero/server"
)

func main() {
	app := &cli.App{
		Name:  "confero",
		Usage: "Attendee matching engine for conference networking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the matching API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
			{
				Name:   "precompute",
				Usage:  "Build the top-50 match tables offline",
				Action: precomputeCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent workers for AI calls",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 25,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed AI calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Skip items that already have match rows",
					},
				},
			},
			{
				Name:      "seed",
				Usage:     "Load an extraction snapshot (JSON) into the database",
				ArgsUsage: "<snapshot.json>",
				Action:    seedCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*confero.Database, *confero.Config, error) {
	cfg, err := confero.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := confero.NewDatabase(cfg.DataPath, confero.WithAIConfig(cfg.AIConfig()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

func serveCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.BuildIndexes(ctx); err != nil {
		return fmt.Errorf("failed to build indexes: %w", err)
	}

	matcher, err := db.NewMatcher(match.WithMinSimilarity(float32(cfg.MinSimilarity)))
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}

	srv, err := server.New(matcher,
		server.WithCORSOrigins(cfg.CORSOrigins),
		server.WithQueryTimeout(cfg.QueryTimeout))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	addr := cfg.Addr
	if flagAddr := c.String("addr"); flagAddr != "" {
		addr = flagAddr
	}
	return srv.Run(ctx, addr)
}

func precomputeCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := precompute.DefaultConfig()
	if c.Int("pool-size") > 0 {
		config.PoolSize = c.Int("pool-size")
	}
	config.ReportInterval = c.Int("report-interval")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.Resume = c.Bool("resume")

	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	engine, err := db.NewEngine(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("precompute failed: %w", err)
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one snapshot file argument")
	}
	snapshotPath := c.Args().First()

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := confero.LoadSnapshot(ctx, db, snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Loaded %d attendees, %d offerings, %d requests\n",
		stats.Attendees, stats.Offerings, stats.Requests)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
