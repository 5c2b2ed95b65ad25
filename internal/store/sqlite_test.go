package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fieldbot/internal/domain"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededStore(t *testing.T) *SQLite {
	t.Helper()
	s := testStore(t)
	sf, err := LoadSeedFile("")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := s.Seed(context.Background(), sf); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func mustRange(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		t.Fatal(err)
	}
	return domain.DateRange{Start: s, End: e}
}

func TestSeed_DefaultDataset(t *testing.T) {
	s := seededStore(t)
	n, err := s.CountAgents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("agents = %d, want 3", n)
	}
}

func TestSeed_SkipsPopulatedDatabase(t *testing.T) {
	s := seededStore(t)
	sf, _ := LoadSeedFile("")
	if err := s.Seed(context.Background(), sf); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountAgents(context.Background())
	if n != 3 {
		t.Fatalf("agents after reseed = %d, want 3", n)
	}
}

func TestSumPayout_Month(t *testing.T) {
	s := seededStore(t)
	total, err := s.SumPayout(context.Background(), 1, mustRange(t, "2025-08-01", "2025-08-31"))
	if err != nil {
		t.Fatal(err)
	}
	// Agent 1's August rows, clawbacks included: 500+600+450+700+950+1200-200.
	if total != 4200 {
		t.Fatalf("total = %v, want 4200", total)
	}
}

func TestSumPayout_InclusiveBounds(t *testing.T) {
	s := seededStore(t)
	total, err := s.SumPayout(context.Background(), 1, mustRange(t, "2025-08-01", "2025-08-01"))
	if err != nil {
		t.Fatal(err)
	}
	if total != 500 {
		t.Fatalf("single-day total = %v, want 500", total)
	}
}

func TestSumPayout_NoRowsIsZero(t *testing.T) {
	s := seededStore(t)
	total, err := s.SumPayout(context.Background(), 1, mustRange(t, "2024-01-01", "2024-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("total = %v, want 0", total)
	}
}

func TestFindOrdersByCustomer_CaseInsensitive(t *testing.T) {
	s := seededStore(t)
	orders, err := s.FindOrdersByCustomer(context.Background(), "john")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].CustomerName != "Alice Johnson" {
		t.Fatalf("orders = %+v, want the Johnson record", orders)
	}
	if orders[0].ContractPrice == nil || *orders[0].ContractPrice != 15000 {
		t.Errorf("contract price = %v", orders[0].ContractPrice)
	}
}

func TestFindOrdersByCustomer_LimitAndOrder(t *testing.T) {
	s := seededStore(t)
	// "a" matches most seeded customers; the cap and descending PID apply.
	orders, err := s.FindOrdersByCustomer(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 10 {
		t.Fatalf("len = %d, want 10", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].ID >= orders[i-1].ID {
			t.Fatalf("orders not in descending PID order: %d before %d", orders[i-1].ID, orders[i].ID)
		}
	}
}

func TestFindOrdersByCustomer_NoMatch(t *testing.T) {
	s := seededStore(t)
	orders, err := s.FindOrdersByCustomer(context.Background(), "zzzz")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders = %+v, want none", orders)
	}
}

func TestAgentByEmail(t *testing.T) {
	s := seededStore(t)
	a, err := s.AgentByEmail(context.Background(), "john@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if a == nil || a.Name != "John Doe" || a.ID == 0 {
		t.Fatalf("agent = %+v", a)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("seeded password not bcrypt-hashed: %v", err)
	}

	missing, err := s.AgentByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("missing agent = %+v, want nil", missing)
	}
}

func TestExchangeLog_RoundTripAndCap(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		if err := s.Append(ctx, 1, fmt.Sprintf("message %d", i), fmt.Sprintf("reply %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	// A different agent's exchanges must not leak in.
	if err := s.Append(ctx, 2, "other agent", "other reply"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(ctx, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	if got[0].Message != "message 5" {
		t.Errorf("oldest kept = %q, want message 5", got[0].Message)
	}
	if got[49].Message != "message 54" {
		t.Errorf("newest = %q, want message 54", got[49].Message)
	}
	for _, e := range got {
		if e.AgentID != 1 {
			t.Fatalf("foreign exchange leaked: %+v", e)
		}
	}
}
