package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/medassist/internal/core"
)

type HelpCommand struct {
	commands  []core.Command
	formatter *ResponseFormatter
}

func NewHelpCommand(commands []core.Command) *HelpCommand {
	return &HelpCommand{
		commands:  commands,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	lines := make([]string, 0, len(c.commands)+1)
	for _, cmd := range c.commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}
	lines = append(lines, fmt.Sprintf("/%s - %s", c.Name(), c.Description()))
	sort.Strings(lines)

	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(lines),
	), nil
}
