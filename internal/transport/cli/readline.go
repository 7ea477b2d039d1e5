package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/service/orchestrator"
	"github.com/sandevgo/medassist/pkg/log"
)

const defaultSessionID = "cli-local"

type ReadLine struct {
	cfg      *config.AppConfig
	orch     *orchestrator.Orchestrator
	commands core.CmdRouter
	rl       *readline.Instance
}

func NewReadLine(orch *orchestrator.Orchestrator, commands core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		orch:     orch,
		commands: commands,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started, type 'exit' to quit, /help for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		// Slash commands run before agent dispatch.
		if out, handled := r.commands.Execute(ctx, defaultSessionID, line); handled {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", out)
			continue
		}

		response := r.orch.HandleTurn(ctx, defaultSessionID, line)
		fmt.Fprintf(r.rl.Stdout(), "%s\n", response)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
