// Package nlp turns a raw agent message into a classified intent, a resolved
// time period, or a customer-name fragment. Everything here is a pure string
// transformation: matching is case-insensitive substring membership, nothing
// smarter, and the precedence between rules is an explicit ordered table.
package nlp

import "strings"

// Intent is the classified purpose of an inbound message.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentPayout
	IntentCustomer
)

func (i Intent) String() string {
	switch i {
	case IntentPayout:
		return "payout"
	case IntentCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is checked top to bottom; the first rule with any keyword hit
// wins. A message mentioning both payouts and customers is a payout query.
var intentRules = []intentRule{
	{IntentPayout, []string{
		"payroll", "payout", "commission", "commissions", "payment", "earnings", "income",
		// period words alone imply a payout query ("how much this week?")
		"week", "month", "year", "period", "range",
	}},
	{IntentCustomer, []string{"customer", "client", "order", "project", "work"}},
}

// Classify maps raw text to an intent. Input is lower-cased before matching;
// no punctuation stripping or tokenization.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}
