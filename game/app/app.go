package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"judgement/common/config"
	"judgement/common/log"
	"judgement/common/metrics"
	"judgement/core/container"
)

const shutdownTimeout = 5 * time.Second

// Run serves until ctx ends or the process gets a stop signal. When
// configFile is set, edits to it are applied live.
func Run(ctx context.Context, cfg *config.Config, configFile string) error {
	gameContainer, err := container.NewGameContainer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := gameContainer.Close(shutdownTimeout); err != nil {
			log.Error("close game container: %v", err)
		}
	}()

	if cfg.Metrics.Enabled {
		go func() {
			log.Info("statsviz at http://localhost:%d%s", cfg.Metrics.Port, metrics.DashboardPath)
			if err := metrics.Serve(cfg.MetricsAddr()); err != nil {
				log.Error("metrics server: %v", err)
			}
		}()
	}

	if configFile != "" {
		err := config.Watch(configFile, gameContainer.Reload, func(err error) {
			log.Warn("config reload rejected: %v", err)
		})
		if err != nil {
			log.Warn("config watch disabled: %v", err)
		}
	}

	go gameContainer.Monitor.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("judgement server listening on %s", cfg.Server.Addr)
		serveErr <- gameContainer.HTTP.Start()
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(c)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				log.Info("interrupt signal, stopping")
				return nil
			case syscall.SIGHUP:
				log.Info("hangup signal, stopping")
				return nil
			default:
				return nil
			}
		}
	}
}
