package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/goesarchive/goescat/pkg/animation"
	"github.com/goesarchive/goescat/pkg/catalog/catalogdb"
	"github.com/goesarchive/goescat/pkg/composite"
	"github.com/goesarchive/goescat/pkg/config"
	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/health"
	"github.com/goesarchive/goescat/pkg/httpapi"
	"github.com/goesarchive/goescat/pkg/jobqueue"
	"github.com/goesarchive/goescat/pkg/jobrun"
	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/retention"
)

var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "goescat-api",
	Short:   "Serves the GOES catalog HTTP API and live-progress WebSocket bridge",
	Version: Version,
	RunE:    runAPI,
}

func init() {
	rootCmd.PersistentFlags().String("addr", ":8080", "listen address")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug-level, non-JSON logging")
}

func runAPI(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	debug, _ := cmd.Flags().GetBool("debug")
	cfg := config.Load()
	if debug {
		cfg.Debug = true
	}
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	log.Init(log.Config{Level: level, JSONOutput: !cfg.Debug})

	ctx := context.Background()

	store, err := catalogdb.Open(ctx, cfg.DatabaseURL, 20)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	broker, err := jobqueue.NewBroker(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("create job broker: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	publisher := events.NewPublisher(rdb)

	// The API process only enqueues; job bodies run in cmd/worker (§4.1,
	// §4.4), so Concurrency here is nominal.
	runner := jobrun.NewRunner(store, broker, publisher, 1)
	retentionEngine := retention.NewEngine(store)
	compositePipeline := &composite.Pipeline{Store: store, StorageRoot: cfg.StoragePath}
	animationPipeline := &animation.Pipeline{Store: store, StorageRoot: cfg.StoragePath}

	server := httpapi.NewServer(store, runner, retentionEngine, compositePipeline, animationPipeline, rdb, cfg, nil)
	server.Checkers = map[string]health.Checker{
		"postgres": health.NewFuncChecker("postgres", func(ctx context.Context) error {
			_, err := store.GetSettings(ctx)
			return err
		}),
		"redis":   health.NewFuncChecker("redis", server.PingRedis),
		"storage": health.NewDiskChecker(cfg.StoragePath, 500*1024*1024),
		"ffmpeg":  health.NewExecChecker([]string{"ffmpeg", "-version"}),
	}

	httpServer := server.HTTPServer(addr)

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info().Str("addr", addr).Msg("starting HTTP API")
		if err := httpServer.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down HTTP API")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
