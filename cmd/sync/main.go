package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/skytrace/flightsync/pkg/api"
	"github.com/skytrace/flightsync/pkg/config"
	"github.com/skytrace/flightsync/pkg/db"
	"github.com/skytrace/flightsync/pkg/logbook"
	"github.com/skytrace/flightsync/pkg/logger"
	"github.com/skytrace/flightsync/pkg/notify"
	"github.com/skytrace/flightsync/pkg/platform"
	syncsvc "github.com/skytrace/flightsync/pkg/sync"
)

func main() {
	configPath := flag.String("config", "/etc/flightsync/sync.json", "Path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg syncsvc.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mainLogger, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	component := func(name string) logger.Logger {
		l, cerr := logger.NewComponent(name, cfg.Logging)
		if cerr != nil {
			return mainLogger
		}

		return l
	}

	store, err := db.NewStore(ctx, cfg.Database, component("db"))
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	session := platform.NewSession(cfg.Platform, component("platform"))
	client := platform.NewClient(cfg.Platform, session, component("platform"))
	resolver := logbook.NewResolver(store, component("logbook"))

	var publisher *notify.Publisher

	if cfg.NATSURL != "" {
		publisher, err = notify.New(cfg.NATSURL, component("notify"))
		if err != nil {
			mainLogger.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("Failed to connect to NATS")
		}
		defer publisher.Close()
	}

	service := syncsvc.NewService(&cfg, store, client, session, resolver, publisher, component("sync"))
	server := api.NewServer(cfg.ListenAddr, service, store, component("api"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return service.Start(gctx) })
	g.Go(func() error { return server.Start(gctx) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		mainLogger.Fatal().Err(err).Msg("Service failed")
	}

	mainLogger.Info().Msg("Shutdown complete")
}
