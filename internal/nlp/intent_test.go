package nlp

import "testing"

func TestClassify_Payout(t *testing.T) {
	for _, msg := range []string{
		"What's my payout this week?",
		"show my COMMISSION",
		"earnings for last month",
		"how much did I make this year",
	} {
		if got := Classify(msg); got != IntentPayout {
			t.Errorf("Classify(%q) = %v, want payout", msg, got)
		}
	}
}

func TestClassify_Customer(t *testing.T) {
	for _, msg := range []string{
		"orders for John Smith",
		"show me the Client list",
		"project status for alice",
	} {
		if got := Classify(msg); got != IntentCustomer {
			t.Errorf("Classify(%q) = %v, want customer", msg, got)
		}
	}
}

func TestClassify_Unknown(t *testing.T) {
	if got := Classify("hello"); got != IntentUnknown {
		t.Fatalf("Classify(hello) = %v, want unknown", got)
	}
}

// A message hitting both keyword sets is always a payout query: the payout
// rule sits first in the table and first match wins.
func TestClassify_PayoutPrecedence(t *testing.T) {
	for _, msg := range []string{
		"payroll for customer Sarah",
		"commission on order 12",
		"customer payment status",
	} {
		if got := Classify(msg); got != IntentPayout {
			t.Errorf("Classify(%q) = %v, want payout (precedence)", msg, got)
		}
	}
}

func TestClassify_PeriodWordAloneIsPayout(t *testing.T) {
	if got := Classify("how was this week"); got != IntentPayout {
		t.Fatalf("Classify = %v, want payout for bare period word", got)
	}
}
