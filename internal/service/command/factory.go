package command

import (
	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/service/orchestrator"
	"github.com/sandevgo/medassist/internal/service/session"
)

func NewCommands(orch *orchestrator.Orchestrator, sessions *session.Store) []core.Command {
	commands := []core.Command{
		NewStatsCommand(orch),
		NewResetCommand(orch),
		NewExportCommand(sessions),
	}
	return append(commands, NewHelpCommand(commands))
}
