package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/medassist/internal/service/session"
)

type ExportCommand struct {
	sessions  *session.Store
	formatter *ResponseFormatter
}

func NewExportCommand(sessions *session.Store) *ExportCommand {
	return &ExportCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ExportCommand) Name() string {
	return "export"
}

func (c *ExportCommand) Description() string {
	return "Export session data as json or table"
}

func (c *ExportCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	format := "table"
	if len(args) > 0 {
		format = args[0]
	}

	switch format {
	case "table":
		return c.sessions.ExportTable(sessionID), nil
	case "json":
		out, err := c.sessions.ExportJSON(sessionID)
		if err != nil {
			return "", fmt.Errorf("export failed: %w", err)
		}
		return out, nil
	default:
		return c.formatter.Usage("/export [json|table]"), nil
	}
}
