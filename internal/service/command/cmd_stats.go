package command

import (
	"context"
	"strconv"

	"github.com/sandevgo/medassist/internal/service/orchestrator"
)

type StatsCommand struct {
	orch      *orchestrator.Orchestrator
	formatter *ResponseFormatter
}

func NewStatsCommand(orch *orchestrator.Orchestrator) *StatsCommand {
	return &StatsCommand{
		orch:      orch,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatsCommand) Name() string {
	return "stats"
}

func (c *StatsCommand) Description() string {
	return "Show item and turn counts for this session"
}

func (c *StatsCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	stats := c.orch.SessionStats(ctx, sessionID)
	return c.formatter.Combine(
		c.formatter.Info("Session Stats"),
		c.formatter.Label("Data items", strconv.Itoa(stats.ItemCount)),
		c.formatter.Label("Conversation turns", strconv.Itoa(stats.TurnCount)),
	), nil
}
