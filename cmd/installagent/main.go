// cmd/installagent/main.go - the local install agent behind the store's Install button.

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

	"github.com/windowsadmins/appstore/pkg/agent"
	"github.com/windowsadmins/appstore/pkg/agentapi"
	"github.com/windowsadmins/appstore/pkg/config"
	"github.com/windowsadmins/appstore/pkg/download"
	"github.com/windowsadmins/appstore/pkg/installer"
	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/metrics"
	"github.com/windowsadmins/appstore/pkg/privilege"
	"github.com/windowsadmins/appstore/pkg/reveal"
	"github.com/windowsadmins/appstore/pkg/version"
	"github.com/windowsadmins/appstore/pkg/web"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultConfigPath(), "Path to the configuration file.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	// Count the number of -v flags.
	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")
	pflag.Parse()

	if *versionFlag {
		version.PrintFull("installagent")
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

	if err := agentapi.ValidateListenAddr(cfg.AgentListenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Refusing to start: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(cfg.LogPath, cfg.TempPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare directories: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg, "installagent"); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogger()

	if err := run(cfg); err != nil {
		logging.Error("installagent exited with error", "error", err)
		logging.CloseLogger()
		os.Exit(1)
	}
}

func run(cfg *config.Configuration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionDir, err := agent.NewSessionDir(cfg.TempPath)
	if err != nil {
		return err
	}

	checker := privilege.System{}
	if !checker.HasInstallPrivilege() {
		logging.Warn("Install agent is not elevated; install requests will be rejected")
	}

	a, err := agent.New(agent.Options{
		SessionDir:      sessionDir,
		Privilege:       checker,
		Fetcher:         download.New(&http.Client{}),
		Runner:          installer.NewExecRunner(time.Duration(cfg.InstallerTimeoutMinutes) * time.Minute),
		DownloadTimeout: time.Duration(cfg.DownloadTimeoutSeconds) * time.Second,
		RevealManual:    cfg.RevealManualDownloads,
		Reveal:          reveal.File,
	})
	if err != nil {
		return err
	}

	info := version.Version()
	logging.Info("Starting install agent", "version", info.Version, "session_dir", sessionDir, "addr", cfg.AgentListenAddr)

	srv := &http.Server{
		Addr: cfg.AgentListenAddr,
		Handler: agentapi.NewRouter(a, agentapi.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Registry:       metrics.NewRegistry(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return web.Serve(ctx, srv, 30*time.Second)
}
