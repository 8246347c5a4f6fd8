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
	"golang.org/x/sync/errgroup"

	"github.com/ovenlight/pizzeria-cart/internal/domain/cart"
	"github.com/ovenlight/pizzeria-cart/internal/domain/catalog"
	"github.com/ovenlight/pizzeria-cart/internal/domain/checkout"
	"github.com/ovenlight/pizzeria-cart/internal/handler"
	"github.com/ovenlight/pizzeria-cart/internal/storage"
	"github.com/ovenlight/pizzeria-cart/pkg/health"
	"github.com/ovenlight/pizzeria-cart/pkg/httpmiddleware"
	"github.com/ovenlight/pizzeria-cart/pricing"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
	)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Cart storage slot.
	slot, err := newSlot(ctx, cfg, healthSvc)
	if err != nil {
		return err
	}

	// Pricing catalog: built-in table unless a file override is given.
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	// Domain services.
	carts := cart.NewManager(slot)
	checkoutSvc := checkout.NewService()

	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	// Routes: health endpoints + API.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.New(cat, carts, checkoutSvc).Register(mux)

	api := otelhttp.NewHandler(mux, "cart-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(api,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
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

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Drain: fail readiness first so load balancers stop routing new
		// traffic, then shut the server down.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newSlot constructs the configured storage backend and registers its
// readiness check where one applies.
func newSlot(ctx context.Context, cfg *Config, healthSvc *health.Health) (storage.Slot, error) {
	switch cfg.Storage {
	case StorageRedis:
		rdb, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx)
		})
		return rdb, nil
	case StorageFile:
		slot, err := storage.NewFile(cfg.FileDir)
		if err != nil {
			return nil, errors.Wrap(err, "open file storage")
		}
		return slot, nil
	case StorageMemory:
		return storage.NewMemory(), nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func loadCatalog(cfg *Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile != "" {
		cat, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, errors.Wrap(err, "load catalog override")
		}
		return cat, nil
	}
	cat, err := catalog.Load(pricing.Default)
	if err != nil {
		return nil, errors.Wrap(err, "load built-in catalog")
	}
	return cat, nil
}
