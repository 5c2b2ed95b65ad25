package domain

import "time"

// DateLayout is the wire format for calendar dates throughout the system.
const DateLayout = "2006-01-02"

// Agent is a field agent allowed to query the bot.
type Agent struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Position     string `json:"position,omitempty"`
	City         string `json:"city,omitempty"`
	Status       string `json:"status"` // Active | Inactive
	PasswordHash string `json:"-"`
}

// DateRange is an inclusive calendar-date span.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// StartDate and EndDate render the bounds in DateLayout.
func (r DateRange) StartDate() string { return r.Start.Format(DateLayout) }
func (r DateRange) EndDate() string   { return r.End.Format(DateLayout) }

// PayoutTotal is the summed payout for one agent over one resolved period.
type PayoutTotal struct {
	Amount      float64
	Range       DateRange
	PeriodLabel string
}

// OrderRecord is a read-only projection of one solar order.
// ContractPrice is nil when the column is NULL; string fields use "" for absent.
type OrderRecord struct {
	ID            int64
	CustomerName  string
	Email         string
	Phone         string
	ContractPrice *float64
	SystemSize    string
	Stage         string
	Redline       string
}

// Exchange is one recorded (message, response) pair for an agent.
type Exchange struct {
	ID        int64     `json:"-"`
	AgentID   int64     `json:"-"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}
