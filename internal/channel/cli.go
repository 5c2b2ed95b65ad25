package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"fieldbot/internal/domain"
)

// CLI implements domain.Channel as an interactive terminal session for one
// authenticated agent.
type CLI struct {
	agentID int64
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
}

type CLIConfig struct {
	AgentID int64
	Logger  *slog.Logger
	In      io.Reader
	Out     io.Writer
}

func NewCLI(cfg CLIConfig) *CLI {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &CLI{
		agentID: cfg.AgentID,
		logger:  cfg.Logger,
		in:      cfg.In,
		out:     cfg.Out,
	}
}

func (c *CLI) Name() string { return "cli" }

// Start runs the REPL until EOF, /quit, or context cancellation.
func (c *CLI) Start(ctx context.Context, responder domain.Responder) error {
	_, _ = fmt.Fprintln(c.out, "Type your question and press Enter. Type /quit to exit.")
	_, _ = fmt.Fprint(c.out, "You> ")

	scanner := bufio.NewScanner(c.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil // EOF
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			_, _ = fmt.Fprint(c.out, "You> ")
			continue
		}
		if line == "/quit" || line == "/exit" || line == "/q" {
			c.logger.Info("user requested quit")
			return nil
		}

		reply, err := responder.Ask(ctx, c.agentID, line)
		if err != nil {
			_, _ = fmt.Fprintf(c.out, "error: %v\n", err)
		} else {
			_, _ = fmt.Fprintln(c.out, reply)
		}
		_, _ = fmt.Fprint(c.out, "You> ")
	}
}

// Stop is a no-op, the REPL exits when Start returns.
func (c *CLI) Stop() error { return nil }
