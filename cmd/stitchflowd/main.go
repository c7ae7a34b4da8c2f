package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"stitchflow/internal/config"
	"stitchflow/internal/daemon"
	"stitchflow/internal/engine"
	"stitchflow/internal/ipc"
	"stitchflow/internal/logging"
	"stitchflow/internal/template"
	"stitchflow/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	activeLog := filepath.Join(cfg.Paths.LogDir, "stitchflow.log")
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "stitchflow*.log", activeLog)

	store, err := workflow.Open(cfg)
	if err != nil {
		logger.Error("open workflow store", logging.Error(err))
		return
	}

	tpl, err := template.Load(cfg.Workflow.TemplatePath)
	if err != nil {
		logger.Error("load stage template", logging.Error(err))
		store.Close()
		return
	}

	eng := engine.New(store, tpl, cfg, logger)

	d, err := daemon.New(cfg, store, eng, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()

	go func() {
		if err := ipcServer.Serve(); err != nil {
			logger.Error("IPC server stopped", logging.Error(err))
			cancel()
		}
	}()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("stitchflowd shutting down")
}
