package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/petcare-scheduler/internal/db"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/petcare-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/petcare-scheduler/internal/logger"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := routes.Deps{
		Config:   cfg,
		Log:      log,
		Calendar: schedule.NewCalendar(cfg.Schedule),
		Metrics:  metrics.NewBookingMetrics(registry),
		Gatherer: registry,
	}

	// ======================================================
	// STORE
	// ======================================================
	var sink audit.Sink
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := memory.New()
		deps.Repo, deps.Slots, deps.Prices, deps.AuditLog = store, store, store, store
		sink = store
		log.Warn().Msg("using in-memory store, data is lost on restart")

	default:
		db, err := dbpkg.NewDB(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("database handle unavailable")
		}
		defer sqlDB.Close()

		auditRepo := infraRepo.NewAuditGormRepository(db)
		deps.Repo = infraRepo.NewAppointmentGormRepository(db)
		deps.Slots = infraRepo.NewAvailabilityGormRepository(db)
		deps.Prices = infraRepo.NewPriceGormResolver(db)
		deps.AuditLog = auditRepo
		deps.Ready = sqlDB.PingContext
		sink = auditRepo
	}

	dispatcher := audit.NewDispatcher(audit.New(sink), log)
	defer dispatcher.Close()
	deps.Audit = dispatcher

	// ======================================================
	// REDIS (idempotency keys)
	// ======================================================
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, idempotency keys disabled until it recovers")
		}
		defer rdb.Close()
		deps.Redis = rdb
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	log.Info().Msg("http server stopped")
}
