package engine

import (
	"fmt"
	"strings"

	"fieldbot/internal/domain"
)

// Reply templates. These are asserted byte-for-byte by clients and tests;
// change them only together with the web UI copy.
const (
	guidanceReply = "I can help you with payouts/commissions and solar order details. Try asking about:\n" +
		"• Payouts for this week, month, year, or last month\n" +
		"• Orders for a specific customer\n" +
		"• Custom date ranges for payouts (from YYYY-MM-DD to YYYY-MM-DD)"

	noPeriodReply = "I couldn't understand the time period. Please specify 'this week', 'this month', " +
		"'this year', 'last month', or use 'from YYYY-MM-DD to YYYY-MM-DD' format."

	noCustomerReply = "Please specify a customer name. For example: 'Show orders for John Smith' or 'Customer John Smith'"

	payoutErrorReply   = "Sorry, I encountered an error while fetching payout information."
	customerErrorReply = "Sorry, I encountered an error while fetching customer information."
)

// formatPayout renders a payout summary. Amounts always carry two decimals,
// so a zero total reads "$0.00".
func formatPayout(total domain.PayoutTotal) string {
	return fmt.Sprintf("**%s Payout Summary**\n\nTotal Amount: $%.2f\nPeriod: %s to %s",
		total.PeriodLabel, total.Amount, total.Range.StartDate(), total.Range.EndDate())
}

// formatOrders renders a numbered block per order. The fragment is echoed
// exactly as extracted.
func formatOrders(fragment string, orders []domain.OrderRecord) string {
	if len(orders) == 0 {
		return "No orders found for customer: " + fragment
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Orders for %s**\n\n", fragment)
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. **PID %d**\n", i+1, o.ID)
		fmt.Fprintf(&b, "   Contract: %s\n", moneyOrNA(o.ContractPrice))
		fmt.Fprintf(&b, "   System Size: %s\n", orNA(o.SystemSize))
		fmt.Fprintf(&b, "   Stage: %s\n", orNA(o.Stage))
		fmt.Fprintf(&b, "   Redline: %s\n", orNA(o.Redline))
		if contact := contactLine(o.Email, o.Phone); contact != "" {
			fmt.Fprintf(&b, "   Contact: %s\n", contact)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// contactLine is empty when both email and phone are absent; the phone is
// parenthesized only when both are present.
func contactLine(email, phone string) string {
	switch {
	case email != "" && phone != "":
		return email + " (" + phone + ")"
	case email != "":
		return email
	case phone != "":
		return phone
	default:
		return ""
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func moneyOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}
