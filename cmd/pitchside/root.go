package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "pitchside",
	Short: "Pitchside, a persona-driven sports chat service",
	Long:  `Pitchside answers supporters' questions in character, grounded in a local knowledge corpus.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
