package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/pkg/env"
	"github.com/sandevgo/medassist/pkg/log"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration as .env content",
	Long:  `Resolves the configuration from the environment and prints it in .env format, ready to drop into the runtime directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		appCfg := config.NewAppConfig(ctx)
		embedCfg := config.NewEmbedConfig(ctx)

		for _, cfg := range []any{appCfg, embedCfg} {
			out, err := env.MarshalEnv(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		}

		logger := log.FromCtx(ctx)
		logger.Debug().Msg("configuration printed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
