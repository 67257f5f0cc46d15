// Package app wires configuration, storage, domain services, and the HTTP
// server into a running process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/flagforge/store-api/internal/currency"
	"github.com/flagforge/store-api/internal/domain/order"
	"github.com/flagforge/store-api/internal/handler"
	"github.com/flagforge/store-api/internal/notify"
	"github.com/flagforge/store-api/internal/repository"
	"github.com/flagforge/store-api/internal/uploader"
	"github.com/flagforge/store-api/pkg/health"
	"github.com/flagforge/store-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis client for cart storage.
	rdb := repository.NewRedisClient(cfg.RedisAddr)
	defer func() { _ = rdb.Close() }()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories and stores.
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	cartStore := repository.NewRedisCartStore(rdb)

	conv := currency.New(cfg.UsdToNprRate)

	// Payment screenshot uploads.
	uploads, err := uploader.New(uploader.Config{
		URL:     cfg.Cloudinary.URL,
		Folder:  cfg.Cloudinary.Folder,
		Timeout: cfg.Cloudinary.Timeout,
	})
	if err != nil {
		return errors.Wrap(err, "create uploader")
	}

	// Order confirmation email. A nil dispatcher disables outbound mail;
	// order placement still succeeds without it.
	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		return errors.Wrap(err, "create mailer")
	}
	if mailer == nil {
		lg.Info("Email transport not configured, confirmations disabled")
	}

	// Domain services.
	var notifier order.Notifier
	if mailer != nil {
		notifier = mailer
	}
	orderService := order.NewService(orderRepo, conv, notifier)

	// HTTP handlers.
	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL, Version: cfg.Version},
		productRepo,
		orderService,
		cartStore,
		uploads,
		mailer,
		conv,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	var apiHandler http.Handler = otelhttp.NewHandler(mux, "flagforge-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(apiHandler,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Draining: readiness gate closed", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Stopping HTTP server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Shutdown", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newMailer builds the confirmation email dispatcher for the configured
// transport, or nil when email is disabled.
func newMailer(cfg MailConfig) (*notify.Dispatcher, error) {
	switch cfg.Transport {
	case "":
		return nil, nil
	case "smtp":
		t, err := notify.NewSMTPTransport(notify.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "smtp transport")
		}
		return notify.NewDispatcher(t), nil
	case "api":
		t := notify.NewBrevoTransport(notify.BrevoConfig{
			APIKey:    cfg.APIKey,
			FromName:  cfg.FromName,
			FromEmail: cfg.From,
			Timeout:   cfg.Timeout,
		})
		return notify.NewDispatcher(t), nil
	default:
		return nil, errors.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
