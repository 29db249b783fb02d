package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/polydrop/config"
	"github.com/alejandrodnm/polydrop/internal/adapters/cache"
	"github.com/alejandrodnm/polydrop/internal/adapters/metrics"
	"github.com/alejandrodnm/polydrop/internal/adapters/notify"
	"github.com/alejandrodnm/polydrop/internal/adapters/polymarket"
	"github.com/alejandrodnm/polydrop/internal/adapters/storage"
	"github.com/alejandrodnm/polydrop/internal/application/checker"
	"github.com/alejandrodnm/polydrop/internal/domain"
	"github.com/alejandrodnm/polydrop/internal/ports"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	table := flag.Bool("table", false, "print full table with suggestions and risks (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	format := flag.String("format", "text", "report format: text|json")
	logFormat := flag.String("log-format", "", "log format: text|json (overrides config)")
	watch := flag.Bool("watch", false, "re-check watch.addresses on watch.schedule until interrupted")
	history := flag.String("history", "", "print stored history for an address and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, options{
		table:     *table,
		format:    *format,
		watch:     *watch,
		history:   *history,
		addresses: flag.Args(),
	}); err != nil {
		slog.Error("polydrop exited with error", "err", err)
		if errors.Is(err, domain.ErrInvalidInput) {
			fmt.Fprintf(os.Stderr, "usage: polydrop [flags] address... (1-%d addresses)\n", cfg.Checker.MaxAddresses)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	table     bool
	format    string
	watch     bool
	history   string
	addresses []string
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	slog.Info("polydrop starting",
		"data_api", cfg.API.DataBase,
		"cache", cfg.Cache.Backend,
		"storage", cfg.Storage.DSN != "",
		"watch", opts.watch,
	)

	var store *storage.SQLiteStorage
	if cfg.Storage.DSN != "" {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
		}
		defer s.Close()
		store = s
	}

	console := notify.NewConsole(opts.table)
	if opts.history != "" {
		return runHistory(ctx, store, console, opts.history)
	}

	recorder := metrics.NewRecorder()
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, recorder)
		defer stop()
	}

	resultCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	client := polymarket.NewClient(polymarket.Config{
		DataBase:       cfg.API.DataBase,
		PageSize:       cfg.Fetch.PageSize,
		MaxPages:       cfg.Fetch.MaxPages,
		MaxRetries:     cfg.MaxRetries(),
		RetryWait:      cfg.RetryWait(),
		RequestTimeout: cfg.RequestTimeout(),
		PageDelay:      cfg.PageDelay(),
		RatePerSec:     cfg.Fetch.RatePerSec,
		Burst:          cfg.Fetch.Burst,
	}, recorder)

	// Evitar un ports.ResultStore no-nil que envuelva un puntero nil.
	var resultStore ports.ResultStore
	if store != nil {
		resultStore = store
	}

	chk := checker.New(checker.Config{
		MaxAddresses: cfg.Checker.MaxAddresses,
		BatchTimeout: cfg.BatchTimeout(),
		Workers:      cfg.Checker.Workers,
	}, client, resultCache, resultStore, recorder)

	var reporter ports.Reporter = console
	if opts.format == "json" {
		reporter = notify.NewJSON()
	}

	if opts.watch {
		addresses := cfg.Watch.Addresses
		if len(opts.addresses) > 0 {
			addresses = opts.addresses
		}
		return runWatch(ctx, chk, reporter, cfg.Watch.Schedule, addresses)
	}

	results, err := chk.Check(ctx, opts.addresses)
	if err != nil {
		return err
	}
	return reporter.Report(ctx, results)
}

// loadConfig usa los valores por defecto si no existe el archivo de config por defecto.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// newCache construye el backend de cache configurado. El closer libera la conexión.
func newCache(ctx context.Context, cfg *config.Config) (ports.ResultCache, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		slog.Info("redis cache connected", "addr", cfg.Cache.RedisAddr)
		return cache.NewRedis(rdb, cfg.CacheTTL()), func() { rdb.Close() }, nil
	case "none":
		return nil, func() {}, nil
	default:
		return cache.NewMemory(cfg.CacheTTL()), func() {}, nil
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout queda para el reporte (p.ej. -format json), los logs van a stderr.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
