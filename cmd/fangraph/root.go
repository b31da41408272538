package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/fangraph/internal/logging"
	"github.com/aretw0/fangraph/pkg/adapters/file"
	"github.com/aretw0/fangraph/pkg/adapters/redis"
	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fangraph",
	Short: "fangraph drives your fans from a graph of sensors and curves",
	Long: `fangraph computes fan duty cycles from temperature sensors through a
user-defined dataflow graph, and keeps the hardware in sync with it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config-dir", ".fangraph", "Directory holding configs and settings")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level")
	rootCmd.PersistentFlags().Bool("info", false, "Log at info level")
	rootCmd.PersistentFlags().String("log", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("redis-addr", "", "Store configs in Redis at this address instead of the config directory")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "info")
}

// newLogger builds the logger selected by the persistent flags.
// The returned closer releases the log file, if any.
func newLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	info, _ := cmd.Flags().GetBool("info")
	logPath, _ := cmd.Flags().GetString("log")

	level := slog.LevelWarn
	if name := os.Getenv("FANGRAPH_LOG_LEVEL"); name != "" {
		level = logging.ParseLevel(name)
	}
	switch {
	case debug:
		level = slog.LevelDebug
	case info:
		level = slog.LevelInfo
	}

	if logPath == "" {
		return logging.New(level, os.Stderr), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.New(level, f), f, nil
}

// stores holds the persistence selected by the persistent flags.
type stores struct {
	configs  ports.ConfigStore
	settings ports.SettingsStore
	redis    *redis.Store
}

func (s *stores) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func openStores(cmd *cobra.Command) *stores {
	dir, _ := cmd.Flags().GetString("config-dir")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")

	s := &stores{
		settings: file.NewSettingsFile(filepath.Join(dir, "settings.yaml")),
	}
	if redisAddr != "" {
		s.redis = redis.New(redisAddr, os.Getenv("FANGRAPH_REDIS_PASSWORD"), 0)
		s.configs = s.redis
	} else {
		s.configs = file.New(filepath.Join(dir, "configs"))
	}
	return s
}
