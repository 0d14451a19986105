package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/api"
	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/favorites"
	"github.com/utafrali/storefront/internal/filter"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/orders"
	"github.com/utafrali/storefront/internal/preferences"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName = "storefront"
	backendName = "storefront-api"
)

// App wires together all dependencies and runs the storefront session.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	storage        *storage.Opened
	producer       *pkgkafka.Producer
	forwarder      *events.Forwarder
	detachForward  func()
	detachCart     func()
	tracerShutdown func(context.Context) error

	bus       *events.Bus
	cart      *cart.Store
	favorites *favorites.Store
	prefs     *preferences.Synchronizer

	// lifecycle bounds work started in NewApp, such as the rate limiter's
	// cleanup loop.
	lifecycle context.Context
	stop      context.CancelFunc

	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.SampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Durable session storage.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB
	opened, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StorageDriver,
		Dir:         cfg.StorageDir,
		KeyPrefix:   cfg.StoragePrefix,
		Redis:       redisCfg,
		SlowCommand: cfg.RedisSlowCmd,
	}, prometheus.DefaultRegisterer, logger)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	logger.Info("storage opened", slog.String("driver", cfg.StorageDriver))

	// REST backend client behind retry and a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.BackendTimeout
	httpCfg.MaxRetries = cfg.BackendMaxRetries
	cbCfg := httpclient.DefaultCircuitBreakerConfig(backendName)
	cbCfg.Timeout = cfg.BreakerTimeout
	cbCfg.MinRequests = cfg.BreakerMinReqs
	cbCfg.FailureRatio = cfg.BreakerRatio
	breaker := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger).
		WithFallback(httpclient.CircuitOpenFallback(backendName))

	bus := events.NewBus(logger)
	tokens := session.NewTokens(opened.Store, logger)
	backend := api.New(breaker, cfg.BackendURL, tokens.Token, logger)

	// Build the dependency graph.
	sessions := session.NewManager(backend, tokens, logger)
	cartStore := cart.NewStore(backend, bus, logger)
	detachCart := cartStore.Listen()
	favs := favorites.New(opened.Store, bus, logger)
	if err := favs.Load(ctx); err != nil {
		logger.Warn("favorites unavailable at startup", slog.String("error", err.Error()))
	}
	prefs := preferences.New(opened.Store, bus, logger, preferences.Options{
		PollInterval:    cfg.PollInterval,
		DefaultLanguage: domain.Language(cfg.DefaultLanguage),
	})
	if err := prefs.Init(ctx, cfg.SystemDarkTheme); err != nil {
		logger.Warn("preferences unavailable at startup", slog.String("error", err.Error()))
	}
	orderService := orders.NewService(backend, cartStore, bus, logger)
	filters := filter.NewSync(filter.NewBuilder(cfg.PriceCeiling))

	a := &App{
		cfg:            cfg,
		logger:         logger,
		storage:        opened,
		tracerShutdown: tracerShutdown,
		bus:            bus,
		cart:           cartStore,
		favorites:      favs,
		prefs:          prefs,
		detachCart:     detachCart,
	}
	a.lifecycle, a.stop = context.WithCancel(context.Background())

	// Optional mirroring of bus events to Kafka.
	if cfg.KafkaEnabled {
		channels, err := parseChannels(cfg.KafkaChannels)
		if err != nil {
			a.closeResources()
			return nil, err
		}
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.forwarder = events.NewForwarder(a.producer, uuid.NewString(), 256, logger)
		a.detachForward = a.forwarder.Attach(bus, channels...)
		logger.Info("kafka event forwarding enabled", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	if opened.Check != nil {
		healthHandler.RegisterCritical("storage", opened.Check)
	}
	healthHandler.RegisterNonCritical("backend", func(context.Context) error {
		if breaker.State() == gobreaker.StateOpen {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins
	cors.Environment = cfg.Environment
	router := handler.NewRouter(a.lifecycle, handler.Services{
		Catalog:     backend,
		Cart:        cartStore,
		Favorites:   favs,
		Orders:      orderService,
		Session:     sessions,
		Preferences: prefs,
		Filters:     filters,
		Bus:         bus,
	}, healthHandler, logger, handler.RouterConfig{
		CORS:           cors,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// No WriteTimeout: the event stream stays open.
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

func parseChannels(names []string) ([]events.Channel, error) {
	channels := make([]events.Channel, 0, len(names))
	for _, n := range names {
		ch, ok := events.ParseChannel(n)
		if !ok {
			return nil, fmt.Errorf("unknown event channel in KAFKA_FORWARD_CHANNELS: %q", n)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// Run starts the background synchronizers and the HTTP server and blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	watcher, _ := a.storage.Store.(storage.Watcher)
	if watcher != nil {
		if err := a.favorites.Watch(ctx, watcher); err != nil {
			a.logger.Warn("favorites watch unavailable", slog.String("error", err.Error()))
		}
	}
	go a.prefs.Run(ctx, watcher)
	if a.forwarder != nil {
		go a.forwarder.Run(ctx)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.BackendTimeout)
	lines := a.cart.Fetch(fetchCtx)
	cancel()
	a.logger.Info("cart loaded", slog.Int("lines", len(lines)))

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()
	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.stop != nil {
		a.stop()
	}
	if a.detachCart != nil {
		a.detachCart()
	}
	if a.detachForward != nil {
		a.detachForward()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if err := a.storage.Close(); err != nil {
		a.logger.Error("storage close error", slog.String("error", err.Error()))
	}
}
