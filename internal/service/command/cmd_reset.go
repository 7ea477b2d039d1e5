package command

import (
	"context"

	"github.com/sandevgo/medassist/internal/service/orchestrator"
)

type ResetCommand struct {
	orch      *orchestrator.Orchestrator
	formatter *ResponseFormatter
}

func NewResetCommand(orch *orchestrator.Orchestrator) *ResetCommand {
	return &ResetCommand{
		orch:      orch,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Clear this session's data and conversation"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.orch.ResetSession(ctx, sessionID)
	return c.formatter.Success("Session cleared"), nil
}
