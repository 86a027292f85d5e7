package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cnetlab/cnetinit/internal/bootstrap"
	"github.com/cnetlab/cnetinit/internal/config"
	"github.com/cnetlab/cnetinit/internal/dockerd"
	"github.com/cnetlab/cnetinit/internal/journal"
	"github.com/cnetlab/cnetinit/internal/nestenv"
	"github.com/cnetlab/cnetinit/internal/ovs"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- [payload...]",
	Short: "Bring up the switching service, then execute the payload",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Exit(runBootstrap(args))
		return nil
	},
}

func runBootstrap(payload []string) int {
	cfg, err := config.Load(configPath())
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("load config", "error", err)
		return bootstrap.ExitBootFailure
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))

	env := nestenv.Detect()

	var jnl bootstrap.BootJournal
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("boot journal unavailable", "path", cfg.JournalPath, "error", err)
		} else {
			jnl = j
		}
	}

	var daemon bootstrap.DaemonPinger
	if env.Nested {
		dc, err := dockerd.New()
		if err != nil {
			logger.Warn("docker client unavailable", "error", err)
		} else {
			daemon = dc
			defer dc.Close()
		}
	}

	mgr := ovs.NewManager(cfg.OVS, cfg.Readiness, ovs.ExecRunner{}, logger)

	return bootstrap.Run(context.Background(), bootstrap.Options{
		Config:  cfg,
		Env:     env,
		Payload: payload,
		Switch:  mgr,
		Journal: jnl,
		Docker:  daemon,
		Logger:  logger,
	})
}
