// Command meshsim runs the directory-based MESI coherence simulator
// against a directory of per-node instruction files (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mesi "github.com/ehrlich-b/go-mesi"
	"github.com/ehrlich-b/go-mesi/internal/config"
	"github.com/ehrlich-b/go-mesi/internal/logging"
	"github.com/ehrlich-b/go-mesi/internal/tui"
	"github.com/ehrlich-b/go-mesi/internal/workload"
)

var (
	verbose         bool
	configPath      string
	watch           bool
	debugInvariants bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meshsim <test_directory>",
		Short: "Run the directory-based MESI cache-coherence simulator",
		Long: "meshsim executes one instruction stream per processor node against a " +
			"directory-based MESI coherence protocol and writes each node's final " +
			"memory/directory/cache state to <test_directory>/core_<k>_output.txt.",
		Args: cobra.ExactArgs(1),
		RunE: runSim,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config override file")
	cmd.Flags().BoolVar(&watch, "watch", false, "open a live terminal dashboard instead of running silently")
	cmd.Flags().BoolVar(&debugInvariants, "debug-invariants", false, "hard-fail on mailbox overflow and protocol invariant violations")
	return cmd
}

func runSim(cmd *cobra.Command, args []string) error {
	testDir := args[0]

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("meshsim: %w", err)
	}

	logLevel := logging.LevelInfo
	if verbose {
		logLevel = logging.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{Level: logLevel, Format: "text", Output: os.Stderr})
	logging.SetDefault(logger)

	source := workload.FileSource{Dir: testDir, Logger: logger}

	observer := mesi.NewMetricsObserver(mesi.NewMetrics())
	params := mesi.Params{
		NumNodes:        cfg.NumProcs,
		Source:          source,
		OutputDir:       testDir,
		Logger:          logger,
		Observer:        observer,
		DebugInvariants: debugInvariants || cfg.DebugInvariants,
	}

	sim, err := mesi.New(params)
	if err != nil {
		return fmt.Errorf("meshsim: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	if watch {
		return tui.Run(ctx, sim)
	}

	if err := sim.Run(ctx); err != nil {
		return fmt.Errorf("meshsim: %w", err)
	}
	logger.Info("simulation reached quiescence, reports written", "dir", testDir)
	return nil
}
