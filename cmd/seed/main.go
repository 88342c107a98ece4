package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/profile"
	"wizardgo/internal/seed"
	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/logger"
	"wizardgo/internal/storage"
)

func main() {
	root := &cli.Command{
		Name:  "seed",
		Usage: "Load demo institutions, maps, items and wizards from a YAML fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "seed.yaml", Usage: "fixture path"},
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSeed(ctx, c.String("file"), c.Bool("json"))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func runSeed(ctx context.Context, path string, asJSON bool) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	logger.Init()
	cfg := config.GlobalConfig

	fixture, err := seed.LoadFile(path)
	if err != nil {
		return err
	}

	stores, err := storage.Open(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			slog.Error("Failed to close storage", "component", "seed", "error", err)
		}
	}()

	seeder := seed.NewSeeder(
		profile.NewService(stores.Profiles, cfg.Game.StartingGems, slog.Default()),
		item.NewService(stores.Items, item.ConfigFrom(cfg.Game), slog.Default()),
		institution.NewService(stores.Institutions, slog.Default()),
		slog.Default(),
	)

	summary, err := seeder.Apply(ctx, fixture)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Printf("wizards=%d institutions=%d maps=%d items=%d grants=%d\n",
		summary.Wizards, summary.Institutions, summary.Maps, summary.Items, summary.Grants)
	return nil
}
