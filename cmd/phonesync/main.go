package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/studio1767/phonesync/internal/config"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "phonesync",
	Short:         "Copy photos and videos off an android device",
	Long:          "Copy photos and videos off an android device over adb, then upload, archive and clean up.\n\n" + config.Usage(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newLedgerCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "path", configPath, "staging", cfg.StagingDir, "roots", cfg.RemoteRoots)
	return cfg, nil
}
