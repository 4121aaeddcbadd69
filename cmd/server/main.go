package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/xmd-bot/api"
	"github.com/yourusername/xmd-bot/internal/app"
	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"github.com/yourusername/xmd-bot/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: search ./configs, ~/.xmd-bot, /etc/xmd-bot)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
		MaxSizeMB:  config.Logging.MaxSizeMB,
		MaxBackups: config.Logging.MaxBackups,
		MaxAgeDays: config.Logging.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Categorized command/error logs
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:      config.Logging.Level,
		LogsDir:    config.Logging.LogsDir,
		MaxSizeMB:  config.Logging.MaxSizeMB,
		MaxBackups: config.Logging.MaxBackups,
		MaxAgeDays: config.Logging.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize command logs: %w", err)
	}
	defer multiLog.Close()

	log.Info("Starting bot",
		zap.String("name", config.Bot.Name),
		zap.String("version", config.Bot.Version),
		zap.String("prefix", config.Bot.Prefix),
		zap.Bool("http_api", config.Server.Enabled),
		zap.Bool("history", config.Store.HistoryEnabled))

	if err := createDirectories(config); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewMetrics(registry)

	// Download history
	var history domain.DownloadRepository
	if config.Store.HistoryEnabled {
		repo, err := infrastructure.NewSQLiteDownloadRepository(config.Store.HistoryPath)
		if err != nil {
			return fmt.Errorf("failed to initialize history: %w", err)
		}
		defer repo.Close()
		history = repo
	}

	// Resolver and status reporter
	resolver := app.NewDownloadResolver(
		infrastructure.NewRedirectResolver(config.Resolver.UserAgent, config.Resolver.RedirectTimeout, config.Resolver.MaxRedirects, log),
		infrastructure.NewJSONClient(nil, config.Resolver.UserAgent, config.Resolver.ProviderTimeout),
		infrastructure.DefaultProviders(config.Resolver.Endpoints),
		metrics,
		log,
	)

	var locator domain.Locator
	if config.Status.EnhancedLocation {
		geoClient := infrastructure.NewJSONClient(nil, "", config.Status.GeoTimeout)
		locator = infrastructure.NewFallbackLocator(
			infrastructure.NewIPAPILocator(geoClient, config.Status.PrimaryGeoURL),
			infrastructure.NewIPInfoLocator(geoClient, config.Status.SecondaryGeoURL),
			metrics,
			log,
		)
	}
	reporter := app.NewStatusReporter(
		infrastructure.NewProcHostMetrics(),
		locator,
		config.Status.FallbackZone,
		config.Bot.Version,
		metrics,
		log,
	)

	// WhatsApp session
	session, err := infrastructure.OpenWhatsAppSession(ctx, &config.Store, &config.Bot, os.Stdout,
		logger.NewWhatsmeowLogger(log, "WhatsApp"), log)
	if err != nil {
		return err
	}
	defer session.Close()

	messenger := infrastructure.NewWhatsAppMessenger(session.Client(), config.Resolver.UserAgent, config.Resolver.MediaTimeout, log)

	dispatcher := app.NewDispatcher(config.Bot.Prefix, messenger, metrics, multiLog, log)
	dispatcher.Register(app.NewFacebookCommand(resolver, messenger, history, &config.Bot, metrics, log))
	dispatcher.Register(app.NewPingCommand(reporter, messenger, &config.Bot, config.Status.FallbackZone, metrics, log))
	session.OnMessage(func(msg *domain.InboundMessage) {
		dispatcher.Dispatch(ctx, msg)
	})

	if err := session.Connect(ctx); err != nil {
		return err
	}
	log.Info("Commands registered", zap.Strings("aliases", dispatcher.Aliases()))

	g, gctx := errgroup.WithContext(ctx)

	if config.Server.Enabled {
		router := api.SetupRouter(api.RouterDeps{
			Config:   config,
			Resolver: resolver,
			Reporter: reporter,
			History:  history,
			Conn:     session,
			Gatherer: registry,
			Logger:   log,
			Events:   multiLog,
		})

		addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
		server := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			log.Info("HTTP server listening", zap.String("addr", addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down, waiting for in-flight commands")
		dispatcher.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Shutdown with error", zap.Error(err))
		return err
	}

	log.Info("Bot exited")
	return nil
}

func createDirectories(config *domain.Config) error {
	dirs := []string{config.Logging.LogsDir}
	if config.Store.HistoryEnabled {
		dirs = append(dirs, filepath.Dir(config.Store.HistoryPath))
	}
	if config.Store.SessionDialect == "sqlite3" {
		dirs = append(dirs, filepath.Dir(sqliteFilePath(config.Store.SessionDSN)))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// sqliteFilePath strips the file: scheme and query options from a sqlite DSN
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
