package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/scenecs/config"
	"github.com/plus3/scenecs/scene"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Float64("churn", 0.01, "Fraction of entities destroyed and respawned per frame.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu, mem or trace.")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error).")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log, err := config.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(*profileMode); p != nil {
		defer p.Stop()
	} else if *profileMode != "" {
		return fmt.Errorf("unknown profile mode %q", *profileMode)
	}

	log.Info("starting ECS stress test",
		zap.Int("entities", *entityCount),
		zap.Float64("churn", *churn),
		zap.Duration("duration", *duration))

	rng := rand.New(rand.NewPCG(1, 2))
	s := scene.New(scene.WithLogger(log.Named("scene")))
	defer s.Close()
	registerSystems(s, rng, *churn)

	for range *entityCount {
		spawnRandomEntity(s, rng)
	}
	log.Info("population complete", zap.Int("alive", s.Entities().Count()))

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Churn:          *churn,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			now := time.Now()
			deltaTime := now.Sub(lastFrameTime)
			lastFrameTime = now

			s.Simulate(deltaTime)
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(now))
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = int64(len(report.UpdateTime.Samples))
	report.UpdateTime.Finalize()
	report.Systems = s.Systems().Stats().Systems
	report.EntityStats = s.Entities().CollectStats()
	report.Visible = scene.GetSystem[cullSystem](s).visible
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished", zap.Int64("updates", report.TotalUpdates))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func startProfile(mode string) interface{ Stop() } {
	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.NoShutdownHook}
	switch mode {
	case "cpu":
		return profile.Start(append(opts, profile.CPUProfile)...)
	case "mem":
		return profile.Start(append(opts, profile.MemProfileAllocs)...)
	case "trace":
		return profile.Start(append(opts, profile.TraceProfile)...)
	}
	return nil
}
