package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plus3/sparsecs/ecs"
	"github.com/plus3/sparsecs/internal/diag"
)

// StressOptions bundles all options for the stress command.
type StressOptions struct {
	Duration       time.Duration
	Entities       int
	Seed           int64
	Profile        string
	LogLevel       string
	GCPauseMetrics bool
}

var stressOptions StressOptions

var cmdRoot = &cobra.Command{
	Use:   "ecs-stress",
	Short: "Stress test the ECS update loop",
	Long: `
ecs-stress populates a scene with randomly composed entities, runs every
stress system over it for the given duration and prints a report of frame
times, per-system statistics and memory usage.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runStress(cmd.Context(), stressOptions)
	},
}

func init() {
	f := cmdRoot.Flags()
	f.DurationVar(&stressOptions.Duration, "duration", 10*time.Second, "total run time of the simulation")
	f.IntVar(&stressOptions.Entities, "entities", 10000, "initial number of entities")
	f.Int64Var(&stressOptions.Seed, "seed", 1, "seed for entity composition")
	f.StringVar(&stressOptions.Profile, "profile", "none", "write a profile to the working directory: cpu, mem or none")
	f.StringVar(&stressOptions.LogLevel, "log-level", "info", "log level")
	f.BoolVar(&stressOptions.GCPauseMetrics, "gc-pause-metrics", false, "include GC pause metrics in the report")
}

func runStress(ctx context.Context, opts StressOptions) error {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log-level")
	}
	diag.SetLevel(level)
	logger := diag.Logger()

	if opts.Entities < 0 {
		return errors.Errorf("entities must not be negative, got %d", opts.Entities)
	}

	switch opts.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "none", "":
	default:
		return errors.Errorf("unknown profile mode %q", opts.Profile)
	}

	logger.Info("Starting ECS stress test...")

	world := ecs.New(ecs.Config{Logger: logger})
	defer world.Destroy()

	types := registerStressComponents(world)
	registerStressSystems(world, types)
	scene := world.CreateScene()

	logger.WithField("entities", opts.Entities).Info("Populating scene")
	rng := rand.New(rand.NewSource(opts.Seed))
	disabled := 0
	for i := 0; i < opts.Entities; i++ {
		e := spawnRandomEntity(world, scene, types, rng)
		if rng.Intn(10) == 0 {
			world.SetEntityEnabled(scene, e, false)
			disabled++
		}
	}
	logger.WithField("disabled", disabled).Info("Population complete")

	report := &Report{
		Duration:       opts.Duration,
		Entities:       opts.Entities,
		Components:     len(types.all()),
		Systems:        world.Stats().SystemCount,
		Seed:           opts.Seed,
		GCPauseMetrics: opts.GCPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.WithField("duration", opts.Duration).Info("Running simulation")
	ctx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			world.Update(scene, deltaTime.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.FinalEntities = scene.NumEntities()
	report.SystemStats = world.Stats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.WithField("updates", report.TotalUpdates).Info("Simulation finished")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return errors.Wrap(err, "generate report")
	}
	fmt.Println("--- End of Report ---")
	return nil
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		diag.Logger().Errorf("%+v", err)
		os.Exit(1)
	}
}
