package main

import (
	"context"
	"os"

	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "medassist",
	Short: "MedAssist is a medical coding chat assistant",
	Long:  `MedAssist routes coding questions to retrieval agents and keeps retrieved records as grounded session context.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
