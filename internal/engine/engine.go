// Package engine runs one decision/execution cycle per scheduler tick:
// reconcile the ledger's day, consult the gate, ask the strategy for an
// action, submit it to the broker, record the outcome, and append the
// tick summary to the execution log.
package engine

import (
	"context"
	"fmt"
	"time"

	"hourly-trading-bot/internal/execlog"
	"hourly-trading-bot/internal/gate"
	"hourly-trading-bot/internal/interfaces"
	"hourly-trading-bot/internal/ledger"
	"hourly-trading-bot/internal/logger"
	"hourly-trading-bot/internal/trace"
	"hourly-trading-bot/internal/types"

	"github.com/shopspring/decimal"
)

type Engine struct {
	symbol  string
	qty     decimal.Decimal
	ledger  *ledger.Store
	exec    *execlog.Log
	brk     interfaces.Broker
	decider interfaces.Decider
	loc     *time.Location
	now     func() time.Time
}

func New(symbol string, qty decimal.Decimal, led *ledger.Store, exec *execlog.Log, brk interfaces.Broker, decider interfaces.Decider, loc *time.Location) *Engine {
	return &Engine{
		symbol:  symbol,
		qty:     qty,
		ledger:  led,
		exec:    exec,
		brk:     brk,
		decider: decider,
		loc:     loc,
		now:     time.Now,
	}
}

// SetNow overrides the clock for tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// Tick executes one cycle. A returned error means the cycle could not
// reach a decision (state reconstruction failed); order failures are not
// errors here, they become ERROR trade records.
func (e *Engine) Tick(ctx context.Context) (*types.TickResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Tick")
	defer span.End()

	now := e.now().In(e.loc)

	if err := e.ledger.Reconcile(); err != nil {
		// Surface the failure in the audit trail too, best effort.
		_ = e.exec.Record("ERROR: " + err.Error())
		return nil, fmt.Errorf("reconcile ledger: %w", err)
	}

	state := gate.FromRecords(e.ledger.Buffer().Trades)
	decision := e.decider.Decide(ctx, now, state)
	logger.Decision(ctx, actionLabel(decision), decision.Reason, "gate_state", state.String())

	result := &types.TickResult{Time: now, Hour: now.Hour(), Notes: "No Action"}

	if !decision.Hold() && gate.CanTrade(state, decision.Action) {
		rec, resp := e.submit(ctx, now, decision.Action)
		if err := e.ledger.AppendTrade(rec); err != nil {
			_ = e.exec.Record("ERROR: " + err.Error())
			return nil, fmt.Errorf("append trade: %w", err)
		}
		logger.Trade(ctx, e.symbol, string(rec.Type), string(rec.Status), rec.Details.OrderID)

		result.Action = decision.Action
		result.Record = &rec
		result.Order = resp
		result.Notes = tickNotes(decision.Action, rec.Status)
	}

	if err := e.exec.Record(result.Notes); err != nil {
		logger.Warn(ctx, "Failed to write execution log", "error", err)
	}
	return result, nil
}

// submit places the order and maps the outcome onto an immutable trade
// record. Broker failures never unwind the tick.
func (e *Engine) submit(ctx context.Context, now time.Time, side types.Side) (types.TradeRecord, *types.OrderResp) {
	rec := types.TradeRecord{
		Timestamp: now,
		Type:      side,
		Details: types.TradeDetails{
			Symbol:   e.symbol,
			Quantity: e.qty,
		},
	}

	resp, err := e.brk.PlaceOrder(ctx, types.OrderReq{Symbol: e.symbol, Side: side, Qty: e.qty})
	if err != nil {
		rec.Status = types.StatusError
		rec.Details.ErrorMessage = err.Error()
		return rec, nil
	}

	rec.Status = types.StatusSuccess
	rec.Details.OrderID = resp.OrderID
	rec.Details.FilledPrice = resp.FilledPrice
	return rec, &resp
}

func actionLabel(d types.Decision) string {
	if d.Hold() {
		return "HOLD"
	}
	return string(d.Action)
}

func tickNotes(side types.Side, status types.Status) string {
	switch {
	case side == types.Buy && status == types.StatusSuccess:
		return "Bought"
	case side == types.Sell && status == types.StatusSuccess:
		return "Sold"
	case side == types.Buy:
		return "Buy failed"
	default:
		return "Sell failed"
	}
}
