package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"unitd/internal/audit"
	"unitd/internal/converter"
	converterstore "unitd/internal/converter/store"
	"unitd/internal/platform/config"
	"unitd/internal/platform/httpserver"
	"unitd/internal/platform/logger"
	"unitd/internal/platform/metrics"
	platformredis "unitd/internal/platform/redis"
	httptransport "unitd/internal/transport/http"
	unitsservice "unitd/internal/units/service"
	unitsstore "unitd/internal/units/store"
)

// main wires stores, services and the HTTP router, then runs the server and
// the audit worker until a shutdown signal arrives. Business logic lives in
// the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Definitions store: Postgres when configured, in-memory otherwise.
	var definitions unitsstore.Definitions = unitsstore.NewMemory()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		pg := unitsstore.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("ensure schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		definitions = pg
		log.Info("definitions store: postgres")
	} else {
		log.Info("definitions store: memory")
	}

	// Session store: Redis when configured, in-memory otherwise.
	var sessions converter.Sessions = converterstore.NewMemory()
	redisClient, err := platformredis.New(cfg)
	if err != nil {
		log.Error("connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = converterstore.NewRedis(redisClient.Client)
		log.Info("session store: redis")
	} else {
		log.Info("session store: memory")
	}

	inbox := make(chan audit.Event, cfg.AuditBuffer)
	publisher := audit.NewPublisher(inbox, log)
	worker := audit.NewWorker(audit.NewMemoryStore(), inbox)

	engine := unitsservice.New(definitions, log, m, publisher)
	batches := converter.NewService(engine, sessions, cfg.SessionTTL, log, m, publisher)

	health := httptransport.HealthFunc(func(r *http.Request) error {
		if redisClient != nil {
			return redisClient.Health(r.Context())
		}
		return nil
	})

	router := httptransport.NewRouter(
		httptransport.NewUnitsHandler(engine, log),
		httptransport.NewConvertHandler(batches, log),
		health,
		cfg.JWTSigningKey,
		log,
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting unitd", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
