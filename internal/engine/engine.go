// Package engine is the message understanding and query-resolution pipeline:
// classify the text, resolve a period or customer-name fragment, run the
// matching store lookup, and render a templated reply. Each message is an
// independent computation; the only side effect is the exchange record.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fieldbot/internal/domain"
	"fieldbot/internal/metrics"
	"fieldbot/internal/nlp"
)

// historyLimit caps the exchanges returned by RecentExchanges.
const historyLimit = 50

// Config wires the engine's collaborators. Store and Exchanges are required;
// Clock defaults to time.Now and Recorder to Exchanges.
type Config struct {
	Store     domain.DataStore
	Exchanges domain.ExchangeLog
	Recorder  domain.ExchangeRecorder
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Engine processes agent messages. It holds no per-message state, so a single
// instance serves concurrent pipelines.
type Engine struct {
	store     domain.DataStore
	exchanges domain.ExchangeLog
	recorder  domain.ExchangeRecorder
	clock     func() time.Time
	logger    *slog.Logger

	msgPayout   *metrics.Counter
	msgCustomer *metrics.Counter
	msgUnknown  *metrics.Counter
	storeErrors *metrics.Counter
	recorded    *metrics.Counter
}

func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Recorder == nil {
		cfg.Recorder = cfg.Exchanges
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		store:     cfg.Store,
		exchanges: cfg.Exchanges,
		recorder:  cfg.Recorder,
		clock:     cfg.Clock,
		logger:    cfg.Logger,

		msgPayout:   metrics.Collector.Counter("fieldbot_messages_total", "Messages processed by intent", `intent="payout"`),
		msgCustomer: metrics.Collector.Counter("fieldbot_messages_total", "Messages processed by intent", `intent="customer"`),
		msgUnknown:  metrics.Collector.Counter("fieldbot_messages_total", "Messages processed by intent", `intent="unknown"`),
		storeErrors: metrics.Collector.Counter("fieldbot_store_errors_total", "Store lookups that failed", ""),
		recorded:    metrics.Collector.Counter("fieldbot_exchanges_recorded_total", "Exchange records appended", ""),
	}
}

// HandleMessage runs the full pipeline and always returns a non-empty reply.
// Every failure kind becomes user-facing text; nothing is raised past this
// boundary. The exchange record is best-effort.
func (e *Engine) HandleMessage(ctx context.Context, agentID int64, text string) string {
	reply := e.process(ctx, agentID, text)

	if err := e.recorder.Append(ctx, agentID, text, reply); err != nil {
		e.logger.Error("record exchange failed", "agent_id", agentID, "err", err)
	} else {
		e.recorded.Inc()
	}
	return reply
}

// RecentExchanges lists the agent's history, oldest to newest, at most 50.
func (e *Engine) RecentExchanges(ctx context.Context, agentID int64) ([]domain.Exchange, error) {
	return e.exchanges.Recent(ctx, agentID, historyLimit)
}

func (e *Engine) process(ctx context.Context, agentID int64, text string) string {
	switch nlp.Classify(text) {
	case nlp.IntentPayout:
		e.msgPayout.Inc()
		return e.answerPayout(ctx, agentID, text)
	case nlp.IntentCustomer:
		e.msgCustomer.Inc()
		return e.answerCustomer(ctx, text)
	default:
		e.msgUnknown.Inc()
		return guidanceReply
	}
}

func (e *Engine) answerPayout(ctx context.Context, agentID int64, text string) string {
	period, err := nlp.ResolvePeriod(text, e.clock())
	if err != nil {
		return noPeriodReply
	}

	amount, err := e.store.SumPayout(ctx, agentID, period.Range)
	if err != nil {
		e.storeErrors.Inc()
		e.logger.Error("payout lookup failed",
			"agent_id", agentID,
			"period", period.Label,
			"err", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err),
		)
		return payoutErrorReply
	}

	return formatPayout(domain.PayoutTotal{
		Amount:      amount,
		Range:       period.Range,
		PeriodLabel: period.Label,
	})
}

func (e *Engine) answerCustomer(ctx context.Context, text string) string {
	name, err := nlp.ExtractCustomerName(text)
	if err != nil {
		return noCustomerReply
	}

	orders, err := e.store.FindOrdersByCustomer(ctx, name)
	if err != nil {
		e.storeErrors.Inc()
		e.logger.Error("customer lookup failed",
			"fragment", name,
			"err", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err),
		)
		return customerErrorReply
	}

	return formatOrders(name, orders)
}
