package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/overlaysteg/internal/config"
)

var (
	rootFlags struct {
		Config   string
		LogLevel string
		Human    bool
	}

	// cfg is loaded once in PersistentPreRunE and shared by every command.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "overlaysteg",
	Short: "Hide a message in an image as a faint overlay, and reveal it again",
	Long: `overlaysteg draws a short message onto an image as white text at low
opacity (at most 50%), and reveals such overlays with histogram equalization.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(rootFlags.Config); err != nil {
			return err
		}
		setupLogging(cmd)
		return nil
	},
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	rootCmd.PersistentFlags().StringVar(&rootFlags.Config, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&rootFlags.LogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.Human, "human", false, "human-readable console logs")
}

func setupLogging(cmd *cobra.Command) {
	level := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		level = rootFlags.LogLevel
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.Log.Human || rootFlags.Human {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("overlaysteg failed")
	}
}
