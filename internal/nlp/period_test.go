package nlp

import (
	"errors"
	"testing"
	"time"
)

// Reference instant used across these tests: Wednesday 2025-08-20.
var refNow = time.Date(2025, 8, 20, 14, 30, 0, 0, time.UTC)

func mustResolve(t *testing.T, text string, now time.Time) Period {
	t.Helper()
	p, err := ResolvePeriod(text, now)
	if err != nil {
		t.Fatalf("ResolvePeriod(%q): %v", text, err)
	}
	return p
}

func TestResolvePeriod_ThisWeek(t *testing.T) {
	p := mustResolve(t, "what's my payout this week?", refNow)
	if p.Label != "This Week" {
		t.Errorf("label = %q, want This Week", p.Label)
	}
	if got := p.Range.StartDate(); got != "2025-08-17" {
		t.Errorf("start = %s, want 2025-08-17", got)
	}
	if got := p.Range.EndDate(); got != "2025-08-23" {
		t.Errorf("end = %s, want 2025-08-23", got)
	}
}

// For any reference instant, "this week" is a 7-day inclusive span starting
// on the most recent Sunday.
func TestResolvePeriod_ThisWeekAlwaysSundayStart(t *testing.T) {
	for day := 0; day < 14; day++ {
		now := refNow.AddDate(0, 0, day)
		p := mustResolve(t, "this week", now)
		if p.Range.Start.Weekday() != time.Sunday {
			t.Fatalf("now=%s: start %s is a %s, want Sunday",
				now.Format("2006-01-02"), p.Range.StartDate(), p.Range.Start.Weekday())
		}
		if span := p.Range.End.Sub(p.Range.Start); span != 6*24*time.Hour {
			t.Fatalf("now=%s: span = %v, want 6 days", now.Format("2006-01-02"), span)
		}
		if now.Before(p.Range.Start) || p.Range.End.AddDate(0, 0, 1).Before(now) {
			t.Fatalf("now=%s outside resolved week %s..%s",
				now.Format("2006-01-02"), p.Range.StartDate(), p.Range.EndDate())
		}
	}
}

func TestResolvePeriod_ThisMonth(t *testing.T) {
	p := mustResolve(t, "payout this month", refNow)
	if p.Label != "This Month" {
		t.Errorf("label = %q", p.Label)
	}
	if p.Range.StartDate() != "2025-08-01" || p.Range.EndDate() != "2025-08-31" {
		t.Errorf("range = %s..%s, want 2025-08-01..2025-08-31", p.Range.StartDate(), p.Range.EndDate())
	}
}

func TestResolvePeriod_ThisYear(t *testing.T) {
	p := mustResolve(t, "income this year", refNow)
	if p.Range.StartDate() != "2025-01-01" || p.Range.EndDate() != "2025-12-31" {
		t.Errorf("range = %s..%s", p.Range.StartDate(), p.Range.EndDate())
	}
	if p.Label != "This Year" {
		t.Errorf("label = %q", p.Label)
	}
}

func TestResolvePeriod_LastMonth(t *testing.T) {
	p := mustResolve(t, "commissions last month", refNow)
	if p.Range.StartDate() != "2025-07-01" || p.Range.EndDate() != "2025-07-31" {
		t.Errorf("range = %s..%s, want 2025-07-01..2025-07-31", p.Range.StartDate(), p.Range.EndDate())
	}
}

// January must roll back into the previous year.
func TestResolvePeriod_LastMonthYearBoundary(t *testing.T) {
	jan := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	p := mustResolve(t, "last month payout", jan)
	if p.Range.StartDate() != "2025-12-01" || p.Range.EndDate() != "2025-12-31" {
		t.Errorf("range = %s..%s, want 2025-12-01..2025-12-31", p.Range.StartDate(), p.Range.EndDate())
	}
}

func TestResolvePeriod_CustomPair(t *testing.T) {
	p := mustResolve(t, "Payout from 2025-08-01 to 2025-08-31", refNow)
	if p.Range.StartDate() != "2025-08-01" || p.Range.EndDate() != "2025-08-31" {
		t.Errorf("range = %s..%s", p.Range.StartDate(), p.Range.EndDate())
	}
	if p.Label != "Custom Period (2025-08-01 to 2025-08-31)" {
		t.Errorf("label = %q", p.Label)
	}
}

func TestResolvePeriod_CustomPairConnectorsOptional(t *testing.T) {
	p := mustResolve(t, "payout 2025-03-05 2025-03-09", refNow)
	if p.Range.StartDate() != "2025-03-05" || p.Range.EndDate() != "2025-03-09" {
		t.Errorf("range = %s..%s", p.Range.StartDate(), p.Range.EndDate())
	}
}

// Literal pairs are never reordered: the first literal is always the start,
// even when it is later than the second. Deliberate — the reply echoes the
// agent's own dates. Do not "fix" by sorting.
func TestResolvePeriod_CustomPairNotReordered(t *testing.T) {
	p := mustResolve(t, "payout between 2025-08-31 and 2025-08-01", refNow)
	if p.Range.StartDate() != "2025-08-31" || p.Range.EndDate() != "2025-08-01" {
		t.Errorf("range = %s..%s, want literal (reversed) order preserved", p.Range.StartDate(), p.Range.EndDate())
	}
	if p.Label != "Custom Period (2025-08-31 to 2025-08-01)" {
		t.Errorf("label = %q", p.Label)
	}
}

func TestResolvePeriod_NamedPhraseBeatsLiterals(t *testing.T) {
	p := mustResolve(t, "this week or 2025-01-01 to 2025-02-01", refNow)
	if p.Label != "This Week" {
		t.Errorf("label = %q, want named phrase to win", p.Label)
	}
}

func TestResolvePeriod_NoPeriod(t *testing.T) {
	for _, text := range []string{
		"payout",
		"payout since 2025-08-01", // single literal is not enough
		"earnings from 2025-13-40 to 2025-14-40", // matches the pattern but not the calendar
	} {
		if _, err := ResolvePeriod(text, refNow); !errors.Is(err, ErrNoPeriod) {
			t.Errorf("ResolvePeriod(%q) err = %v, want ErrNoPeriod", text, err)
		}
	}
}
