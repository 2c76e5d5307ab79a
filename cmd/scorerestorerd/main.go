package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Keksclan/goScoreRestorer/bridge"
	"github.com/Keksclan/goScoreRestorer/cvar"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/Keksclan/goScoreRestorer/store"
	"github.com/Keksclan/goScoreRestorer/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	version     = "dev" // Will be set during build
	cfgFile     string
	showVersion bool
)

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

var rootCmd = &cobra.Command{
	Use:           "scorerestorerd",
	Short:         "Score restorer bridge daemon",
	SilenceErrors: true,
	Long: `scorerestorerd keeps departed players' scores for remote game servers and
hands them back when the same player rejoins from the same address.

Configuration file must be in JSON format, for example:
{
    "listen_addr": "0.0.0.0:7451",
    "metrics_addr": "127.0.0.1:9451",
    "save_time": 120,
    "vars_file": "vars.json",
    "vars_reload_time": 10,
    "max_records": 100000,
    "tokens": {"change-me": "eu-1"},
    "allow_list": ["10.0.0.0/8"],
    "rate_limit": 500,
    "rate_burst": 100
}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("scorerestorerd %s\n", version)
			return nil
		}

		if cfgFile == "" {
			return fmt.Errorf("config file is required (use --config)")
		}
		if !filepath.IsAbs(cfgFile) {
			var err error
			cfgFile, err = filepath.Abs(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to get absolute path: %w", err)
			}
		}

		fs := afero.NewOsFs()
		var config Config
		if err := LoadConfig(fs, cfgFile, &config); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, fs, &config)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to config file (required)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version information")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(ctx context.Context, fs afero.Fs, config *Config) error {
	logger := newLogger(config.Debug)
	slog.SetDefault(logger)

	vars := cvar.NewMemory()
	if config.VarsFile != "" {
		if err := cvar.LoadFile(fs, config.VarsFile, vars); err != nil {
			return fmt.Errorf("failed to load vars: %w", err)
		}
	}
	cvar.EnsureDefault(vars, cvar.SaveTime, config.SaveTime)

	recordOpts := []record.Option{
		record.WithTTL(cvar.Seconds(vars, cvar.SaveTime, cvar.DefaultSaveTime)),
	}
	if config.MaxRecords > 0 {
		bounded, err := store.NewBounded[record.Record](config.MaxRecords)
		if err != nil {
			return fmt.Errorf("failed to create record store: %w", err)
		}
		defer bounded.Close()
		recordOpts = append(recordOpts, record.WithStore(bounded))
	}
	if config.KeepEmpty {
		recordOpts = append(recordOpts, record.WithKeepEmpty())
	}
	if config.OverwriteDuplicates {
		recordOpts = append(recordOpts, record.WithOverwriteDuplicates())
	}
	cache := record.New(recordOpts...)
	defer cache.Flush()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg, func() float64 { return float64(cache.Len()) })
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	opts := []bridge.Option{
		bridge.WithRecovery(),
		bridge.WithLogger(logger),
		bridge.WithMetrics(m),
	}
	if len(config.Tokens) > 0 {
		opts = append(opts, bridge.WithAuthTokens(config.Tokens))
	} else {
		logger.Warn("no tokens configured, bridge accepts unauthenticated calls")
	}
	if len(config.AllowList) > 0 {
		opts = append(opts, bridge.WithAllowList(config.AllowList...))
	}
	if config.RateLimit > 0 {
		opts = append(opts, bridge.WithRateLimit(config.RateLimit, config.RateBurst))
	}
	if config.TraceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		opts = append(opts, bridge.WithTracing(tracing.Config{TracerProvider: tp}))
	}

	srv, err := bridge.NewServer(cache, opts...)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	lis, err := net.Listen("tcp", config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errc := make(chan error, 2)
	go func() { errc <- srv.Serve(lis) }()

	var httpSrv *http.Server
	if config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		httpSrv = &http.Server{Addr: config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	if config.VarsFile != "" && config.VarsReloadTime > 0 {
		go reloadVars(ctx, fs, config.VarsFile, vars, time.Duration(config.VarsReloadTime)*time.Second, logger)
	}

	logger.Info("score restorer started",
		"version", version,
		"listen_addr", lis.Addr().String(),
		"metrics_addr", config.MetricsAddr,
		"save_time", cache.TTL(),
	)

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	logger.Info("shutting down")
	srv.GracefulStop()
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	return err
}

// reloadVars re-reads path into vars every interval so operators can change
// the restore window without a restart.
func reloadVars(ctx context.Context, fs afero.Fs, path string, vars cvar.Store, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cvar.LoadFile(fs, path, vars); err != nil {
				logger.WarnContext(ctx, "reloading vars failed", "path", path, "error", err)
			}
		}
	}
}
