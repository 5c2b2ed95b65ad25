package nlp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fieldbot/internal/domain"
)

// ErrNoPeriod means the text contained neither a recognized period phrase nor
// two date literals. Callers must not substitute a default window.
var ErrNoPeriod = errors.New("no period resolved")

// Period is a resolved inclusive date range plus its display label.
type Period struct {
	Range domain.DateRange
	Label string
}

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ResolvePeriod derives a concrete date range from the text, relative to now.
// Named phrases are checked first, in a fixed order; otherwise the first two
// YYYY-MM-DD literals (in order of appearance) become start and end. The pair
// is returned exactly as written, even when start > end — downstream reporting
// echoes what the agent typed, pending a product decision on reordering.
func ResolvePeriod(text string, now time.Time) (Period, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "this week"):
		start := midnight(now).AddDate(0, 0, -int(now.Weekday()))
		return Period{Range: domain.DateRange{Start: start, End: start.AddDate(0, 0, 6)}, Label: "This Week"}, nil

	case strings.Contains(lower, "this month"):
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
		return Period{Range: domain.DateRange{Start: start, End: end}, Label: "This Month"}, nil

	case strings.Contains(lower, "this year"):
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
		return Period{Range: domain.DateRange{Start: start, End: end}, Label: "This Year"}, nil

	case strings.Contains(lower, "last month"):
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), 0, 0, 0, 0, 0, now.Location())
		return Period{Range: domain.DateRange{Start: start, End: end}, Label: "Last Month"}, nil
	}

	return resolveLiteralPair(text)
}

// resolveLiteralPair scans for explicit date literals. Connector words like
// "from", "between" or "to" are ornamental: only the literals matter.
func resolveLiteralPair(text string) (Period, error) {
	literals := datePattern.FindAllString(text, -1)
	if len(literals) < 2 {
		return Period{}, ErrNoPeriod
	}

	start, err := time.Parse(domain.DateLayout, literals[0])
	if err != nil {
		return Period{}, ErrNoPeriod
	}
	end, err := time.Parse(domain.DateLayout, literals[1])
	if err != nil {
		return Period{}, ErrNoPeriod
	}

	return Period{
		Range: domain.DateRange{Start: start, End: end},
		Label: fmt.Sprintf("Custom Period (%s to %s)", literals[0], literals[1]),
	}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
