package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/goesarchive/goescat/pkg/beat"
	"github.com/goesarchive/goescat/pkg/catalog/catalogdb"
	"github.com/goesarchive/goescat/pkg/config"
	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/jobqueue"
	"github.com/goesarchive/goescat/pkg/jobrun"
	"github.com/goesarchive/goescat/pkg/log"
)

var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "goescat-beat",
	Short:   "Ticks fetch schedules and cleanup rules on a fixed interval",
	Version: Version,
	RunE:    runBeat,
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug-level, non-JSON logging")
}

func runBeat(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := catalogdb.Open(ctx, cfg.DatabaseURL, 5)
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

	// beat only dispatches, never runs handler bodies itself (Start is
	// never called), so a concurrency-1 runner is enough to reuse
	// Runner.Dispatch (§4.5).
	runner := jobrun.NewRunner(store, broker, publisher, 1)
	scheduler := beat.NewScheduler(store, runner)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Logger.Info().Msg("shutting down beat scheduler")
		cancel()
	}()

	log.Logger.Info().Msg("starting beat scheduler")
	scheduler.Run(ctx)
	return nil
}
