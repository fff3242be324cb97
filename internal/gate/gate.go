// Package gate enforces the once-per-day idempotency rule. It is a pure
// view over the current-day buffer: SUCCESS records advance the day's
// state, ERROR records never do, and the archive is never consulted.
package gate

import "hourly-trading-bot/internal/types"

// State of the trading day: NoTradeYet → Bought → Sold.
type State int

const (
	NoTradeYet State = iota
	Bought
	Sold
)

func (s State) String() string {
	switch s {
	case NoTradeYet:
		return "NO_TRADE_YET"
	case Bought:
		return "BOUGHT"
	case Sold:
		return "SOLD"
	}
	return "UNKNOWN"
}

// FromRecords derives the day state from the buffer's records.
func FromRecords(records []types.TradeRecord) State {
	var bought, sold bool
	for _, r := range records {
		if !r.Succeeded() {
			continue
		}
		switch r.Type {
		case types.Buy:
			bought = true
		case types.Sell:
			sold = true
		}
	}
	if sold {
		return Sold
	}
	if bought {
		return Bought
	}
	return NoTradeYet
}

// CanTrade reports whether an attempt of the given type is permitted in
// the given state. A buy is permitted only before any successful trade; a
// sell only after a successful buy and before a successful sell.
func CanTrade(s State, side types.Side) bool {
	switch side {
	case types.Buy:
		return s == NoTradeYet
	case types.Sell:
		return s == Bought
	}
	return false
}
