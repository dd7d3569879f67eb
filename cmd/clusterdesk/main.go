package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/clusterdesk/internal/auth"
	"github.com/dropDatabas3/clusterdesk/internal/config"
	"github.com/dropDatabas3/clusterdesk/internal/httpapi"
	"github.com/dropDatabas3/clusterdesk/internal/metrics"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
	"github.com/dropDatabas3/clusterdesk/internal/reconcile"
	"github.com/dropDatabas3/clusterdesk/internal/simulator"
	"github.com/dropDatabas3/clusterdesk/internal/store"
	"github.com/dropDatabas3/clusterdesk/internal/watch"
	"github.com/dropDatabas3/clusterdesk/internal/ws"
)

func main() {
	cfgPath := flag.String("config", "", "ruta al config YAML (opcional)")
	flag.Parse()

	// .env si existe (no falla si falta)
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "clusterdesk",
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	if err := metrics.Register(nil); err != nil {
		lg.Fatal("register metrics", logger.Err(err))
	}

	// Store: fuente de verdad única, construido acá y pasado a cada
	// componente que lo necesita (sin estado global).
	st := store.New(cfg.Data.DBPath, cfg.Data.RegionsPath, cfg.Data.VersionsPath)
	if err := st.Load(); err != nil {
		lg.Fatal("load store", logger.Err(err), logger.File(cfg.Data.DBPath))
	}

	authSvc := auth.NewService(cfg.Data.UsersPath, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err := authSvc.LoadUsers(); err != nil {
		lg.Fatal("load users", logger.Err(err), logger.File(cfg.Data.UsersPath))
	}

	hub := ws.NewHub()
	defer hub.Close()

	rec := reconcile.New(hub)

	sim := simulator.New(st, hub, cfg.Simulator.ProvisionDelay)
	defer sim.Stop()

	api := httpapi.NewAPI(st, authSvc, hub, sim)
	handler := api.Router(cfg.Server.CORSAllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("server listening", logger.String("addr", cfg.Server.Addr))
		return httpapi.Start(ctx, cfg.Server.Addr, handler)
	})

	if cfg.Watcher.Enabled {
		w := watch.New(st, rec, cfg.Watcher.Debounce)
		g.Go(func() error {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		lg.Fatal("server exited", logger.Err(err))
	}
	lg.Info("shutdown complete")
}
