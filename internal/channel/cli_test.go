package channel

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type scriptedResponder struct {
	agentIDs []int64
	asked    []string
}

func (r *scriptedResponder) Ask(ctx context.Context, agentID int64, text string) (string, error) {
	r.agentIDs = append(r.agentIDs, agentID)
	r.asked = append(r.asked, text)
	return "reply to: " + text, nil
}

func TestCLISession(t *testing.T) {
	in := strings.NewReader("payout for this week\n\n/quit\n")
	var out bytes.Buffer
	responder := &scriptedResponder{}

	cli := NewCLI(CLIConfig{
		AgentID: 7,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		In:      in,
		Out:     &out,
	})

	if err := cli.Start(context.Background(), responder); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(responder.asked) != 1 {
		t.Fatalf("asked %d questions, want 1 (blank lines and /quit skipped)", len(responder.asked))
	}
	if responder.asked[0] != "payout for this week" {
		t.Errorf("asked = %q", responder.asked[0])
	}
	if responder.agentIDs[0] != 7 {
		t.Errorf("agent ID = %d, want 7", responder.agentIDs[0])
	}
	if !strings.Contains(out.String(), "reply to: payout for this week") {
		t.Errorf("output missing reply: %q", out.String())
	}
}

func TestCLIStopsOnEOF(t *testing.T) {
	cli := NewCLI(CLIConfig{
		AgentID: 1,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		In:      strings.NewReader(""),
		Out:     io.Discard,
	})
	if err := cli.Start(context.Background(), &scriptedResponder{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}
