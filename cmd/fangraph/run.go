package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/fangraph"
	"github.com/aretw0/fangraph/internal/presentation/tui"
	"github.com/aretw0/fangraph/pkg/adapters/file"
	"github.com/aretw0/fangraph/pkg/adapters/redis"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/observability"
	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/spf13/cobra"
)

// lockAcquireTimeout bounds the wait for another instance to release the hardware.
const lockAcquireTimeout = 5 * time.Second

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the fans until interrupted",
	Long: `Restores the last graph, then refreshes the hardware, evaluates the graph and
writes the controls at every update delay. Every control is handed back to its
firmware on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("hardware", "", "Hardware file describing sensors, fans and controls")
	runCmd.Flags().String("state-file", "", "Dump control modes and duty cycles to this file after every write")
	runCmd.Flags().StringP("config", "c", "", "Switch to this config at startup")
	runCmd.Flags().String("metrics-file", "", "Write Prometheus metrics in textfile format after every tick")
	runCmd.Flags().Bool("once", false, "Run a single tick and exit")
	_ = runCmd.MarkFlagRequired("hardware")
}

func runDaemon(cmd *cobra.Command) error {
	hardwarePath, _ := cmd.Flags().GetString("hardware")
	stateFile, _ := cmd.Flags().GetString("state-file")
	configName, _ := cmd.Flags().GetString("config")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	once, _ := cmd.Flags().GetBool("once")

	logger, logCloser, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridgeOpts := []file.BridgeOption{file.WithBridgeLogger(logger)}
	if stateFile != "" {
		bridgeOpts = append(bridgeOpts, file.WithStateFile(stateFile))
	}
	bridge, err := file.NewBridge(hardwarePath, bridgeOpts...)
	if err != nil {
		return err
	}

	st := openStores(cmd)
	defer st.Close()

	var lock *instanceLock
	if st.redis != nil {
		lock, err = acquireInstanceLock(ctx, redis.NewLocker(st.redis.Client(), redis.DefaultPrefix))
		if err != nil {
			return err
		}
		defer lock.release(logger)
	}

	metrics := observability.NewMetrics()
	ctrl := fangraph.New(bridge,
		fangraph.WithLogger(logger),
		fangraph.WithStore(st.configs),
		fangraph.WithSettingsStore(st.settings),
		fangraph.WithMetrics(metrics),
		fangraph.WithLifecycleHooks(observability.LogHooks(logger)),
	)
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to restore graph: %w", err)
	}
	defer func() {
		// The signal context is done by now
		if err := ctrl.Shutdown(context.Background()); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	if configName != "" {
		if err := ctrl.SwitchConfig(ctx, configName); err != nil {
			return err
		}
	}

	if !once && tui.IsTerminal(os.Stdout) {
		tui.PrintBanner(os.Stdout, fangraph.Version)
	}

	tick := func() error {
		if err := ctrl.Tick(ctx); err != nil && !errors.Is(err, domain.ErrTickInProgress) {
			logger.ErrorContext(ctx, "Tick failed", "error", err)
		}
		if metricsFile != "" {
			if err := metrics.WriteToTextfile(metricsFile); err != nil {
				logger.WarnContext(ctx, "Failed to write metrics", "path", metricsFile, "error", err)
			}
		}
		if lock != nil {
			return lock.extend(ctx, ctrl.UpdateDelay())
		}
		return nil
	}

	if err := tick(); err != nil || once {
		return err
	}

	delay := ctrl.UpdateDelay()
	logger.Info("Driving fans", "update_delay", delay, "config", ctrl.CurrentConfig())
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping")
			return nil
		case <-ticker.C:
			if err := tick(); err != nil {
				return err
			}
		}
	}
}

// instanceLock keeps a second daemon from driving the same hardware through the same Redis.
type instanceLock struct {
	locker ports.DistributedLocker
	key    string
	unlock ports.UnlockFunc
}

func lockTTL(delay time.Duration) time.Duration {
	return max(10*time.Second, 3*delay)
}

func acquireInstanceLock(ctx context.Context, locker ports.DistributedLocker) (*instanceLock, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host name: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()
	unlock, err := locker.Lock(lockCtx, host, lockTTL(0))
	if err != nil {
		return nil, fmt.Errorf("another instance is driving the hardware of %s: %w", host, err)
	}
	return &instanceLock{locker: locker, key: host, unlock: unlock}, nil
}

func (l *instanceLock) extend(ctx context.Context, delay time.Duration) error {
	if err := l.locker.Extend(ctx, l.key, lockTTL(delay)); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("lost the instance lock: %w", err)
	}
	return nil
}

func (l *instanceLock) release(logger *slog.Logger) {
	if err := l.unlock(context.Background()); err != nil {
		logger.Warn("Failed to release the instance lock", "error", err)
	}
}
