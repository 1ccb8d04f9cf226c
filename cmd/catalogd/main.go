// cmd/catalogd/main.go - serves the software catalog over HTTP.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"github.com/windowsadmins/appstore/pkg/config"
	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/metrics"
	"github.com/windowsadmins/appstore/pkg/server"
	"github.com/windowsadmins/appstore/pkg/store"
	"github.com/windowsadmins/appstore/pkg/version"
	"github.com/windowsadmins/appstore/pkg/web"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultConfigPath(), "Path to the configuration file.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	writeConfig := pflag.Bool("write-config", false, "Write the effective configuration to --config and exit.")
	seed := pflag.Bool("seed", false, "Insert the sample catalog when the database is empty.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	// Count the number of -v flags.
	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")
	pflag.Parse()

	if *versionFlag {
		version.PrintFull("catalogd")
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	switch {
	case verbosity == 1:
		cfg.LogLevel = "INFO"
	case verbosity >= 2:
		cfg.LogLevel = "DEBUG"
	}

	if *showConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		return
	}
	if *writeConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *configPath)
		return
	}

	if err := cfg.EnsureDirectories(cfg.LogPath, cfg.DownloadsPath, cfg.LogosPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare directories: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg, "catalogd"); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogger()

	if err := run(cfg, *seed); err != nil {
		logging.Error("catalogd exited with error", "error", err)
		logging.CloseLogger()
		os.Exit(1)
	}
}

func run(cfg *config.Configuration, seed bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := version.Version()
	logging.Info("Starting catalogd", "version", info.Version, "driver", cfg.DatabaseDriver, "base_url", cfg.CatalogBaseURL)

	db, err := store.OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := catalog.NewService(store.NewSoftwareRepo(db), catalog.NewResolver(cfg.CatalogBaseURL))
	if seed {
		n, err := svc.SeedIfEmpty(ctx, catalog.DefaultSeed)
		if err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		logging.Info("Seed complete", "inserted", n)
	}

	srv := &http.Server{
		Addr: cfg.CatalogListenAddr,
		Handler: server.NewRouter(svc, server.Options{
			APIToken:       cfg.APIToken,
			DownloadsPath:  cfg.DownloadsPath,
			LogosPath:      cfg.LogosPath,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Registry:       metrics.NewRegistry(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return web.Serve(ctx, srv, 15*time.Second)
}
