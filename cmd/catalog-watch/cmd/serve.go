package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-watch/internal/api/handlers"
	"github.com/donaldgifford/catalog-watch/internal/api/middleware"
	"github.com/donaldgifford/catalog-watch/internal/collector"
	"github.com/donaldgifford/catalog-watch/internal/config"
	"github.com/donaldgifford/catalog-watch/internal/metrics"
	"github.com/donaldgifford/catalog-watch/internal/monitor"
	"github.com/donaldgifford/catalog-watch/internal/notify"
	"github.com/donaldgifford/catalog-watch/internal/store"
	"github.com/donaldgifford/catalog-watch/pkg/logger"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and monitor scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

const shutdownTimeout = 10 * time.Second

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Snapshot store.
	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Upstream catalog collector.
	col := collector.NewHTTPCollector(cfg.Collector.BaseURL,
		collector.WithHTTPClient(&http.Client{Timeout: cfg.Collector.Timeout}),
		collector.WithRateLimit(cfg.Collector.RateLimit.PerSecond, cfg.Collector.RateLimit.Burst),
	)

	// Notification channel.
	not := buildNotifier(cfg, log)

	registry := monitor.NewRegistry(st, col, not,
		monitor.WithRegistryLogger(log),
		monitor.WithJobOptions(monitor.WithRetryBackoff(cfg.Monitor.RetryBackoff)),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("catalog-watch API", Version))
	handlers.RegisterMonitorRoutes(api, handlers.NewMonitorsHandler(registry, cfg.Monitor.MinInterval))
	handlers.RegisterHistoryRoutes(api, handlers.NewHistoryHandler(historyService{st}))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(st))

	// Retention sweep.
	var sweeper *cron.Cron
	if cfg.Retention.Enabled {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.Retention.Schedule, func() {
			pruneCtx, pruneCancel := context.WithTimeout(context.Background(), time.Minute)
			defer pruneCancel()

			n, err := st.PruneSnapshots(pruneCtx, cfg.Retention.KeepLast)
			if err != nil {
				log.Error("retention sweep failed", "error", err)
				return
			}
			metrics.SnapshotsPrunedTotal.Add(float64(n))
			log.Info("retention sweep complete", "pruned", n, "keep_last", cfg.Retention.KeepLast)
		})
		if err != nil {
			return fmt.Errorf("scheduling retention sweep: %w", err)
		}
		sweeper.Start()
		log.Info("retention sweep scheduled",
			"schedule", cfg.Retention.Schedule,
			"keep_last", cfg.Retention.KeepLast,
		)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if sweeper != nil {
		sweeper.Stop()
	}

	if err := registry.StopAll(shutdownCtx); err != nil {
		log.Warn("stopping monitors", "error", err)
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// buildStore creates the configured snapshot store backend and returns it
// with its cleanup function.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "postgres":
		ps, err := store.NewPostgresStore(ctx, cfg.Database.DSN(),
			store.WithPoolSize(cfg.Database.PoolSize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return ps, ps.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Backend == "telegram" {
		opts := []notify.TelegramOption{
			notify.WithHTTPClient(&http.Client{Timeout: cfg.Notifications.Telegram.Timeout}),
		}
		if cfg.Notifications.Telegram.APIURL != "" {
			opts = append(opts, notify.WithAPIURL(cfg.Notifications.Telegram.APIURL))
		}
		return notify.NewTelegramNotifier(cfg.Notifications.Telegram.Token, opts...)
	}
	return notify.NewNoOpNotifier(log)
}

// historyService adapts the snapshot store to the history handler's
// provider interface.
type historyService struct {
	st store.Store
}

func (s historyService) History(
	ctx context.Context,
	tenant string,
	itemID int64,
) ([]domain.PricePoint, error) {
	return monitor.History(ctx, s.st, tenant, itemID)
}
