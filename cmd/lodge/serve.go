package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lodge-admin/backend/internal/api"
	"github.com/lodge-admin/backend/internal/booking"
	"github.com/lodge-admin/backend/internal/config"
	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/metrics"
	"github.com/lodge-admin/backend/internal/ratelimit"
	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (LODGE_ADDR)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	logger.Info("starting lodge backend", zap.String("addr", a.cfg.Addr), zap.String("data_dir", a.cfg.DataDir))

	db, _, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := websocket.NewHub(logger)
	events := websocket.NewEventBroadcaster(hub)
	m := metrics.New()
	observer := m.Observe(events, events)

	cabinRepo := storage.NewCabinRepository(db)
	bookingRepo := storage.NewBookingRepository(db)
	customerRepo := storage.NewCustomerRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)

	bookings := booking.NewService(bookingRepo, cabinRepo, settingsRepo, logger, booking.WithPublisher(observer))
	reconciler := customer.NewReconciler(bookingRepo, customerRepo, observer, logger)
	scheduler, err := customer.NewScheduler(reconciler, a.cfg.ReconcileSpec, logger)
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(ctx, a.cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	router := api.NewRouter(api.Deps{
		DB:             db,
		Cabins:         cabinRepo,
		Customers:      customerRepo,
		Settings:       settingsRepo,
		Bookings:       bookings,
		Scheduler:      scheduler,
		Hub:            hub,
		Metrics:        m,
		Limiter:        limiter,
		TrustedProxies: a.cfg.TrustedProxies,
		IdentityHeader: a.cfg.IdentityHeader,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler.Start()
	if next := scheduler.NextRun(); !next.IsZero() {
		logger.Info("customer reconcile scheduled", zap.String("spec", a.cfg.ReconcileSpec), zap.Time("next", next))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newLimiter builds the rate limiter: Redis-backed when REDIS_URL is set,
// in-memory otherwise, and none when the limit is zero.
func newLimiter(ctx context.Context, cfg config.Config, logger *zap.Logger) (ratelimit.Limiter, func(), error) {
	noop := func() {}
	if cfg.RateLimit == 0 {
		logger.Info("rate limiting disabled")
		return nil, noop, nil
	}
	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(cfg.RateLimit, cfg.RateWindow, clockwork.NewRealClock()), noop, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := ratelimit.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	logger.Info("using redis rate limiter")
	return ratelimit.NewRedis(client, cfg.RateLimit, cfg.RateWindow), func() { client.Close() }, nil
}
