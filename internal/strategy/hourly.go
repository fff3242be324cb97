// Package strategy holds the fixed time-of-day decision rule. The buy and
// sell triggers fire at configured hours; the gate state keeps each of
// them to one success per day.
package strategy

import (
	"context"
	"fmt"
	"time"

	"hourly-trading-bot/internal/gate"
	"hourly-trading-bot/internal/interfaces"
	"hourly-trading-bot/internal/types"
)

type Hourly struct {
	buyHour  int
	sellHour int
}

var _ interfaces.Decider = (*Hourly)(nil)

func NewHourly(buyHour, sellHour int) *Hourly {
	return &Hourly{buyHour: buyHour, sellHour: sellHour}
}

func (h *Hourly) Decide(ctx context.Context, now time.Time, state gate.State) types.Decision {
	hour := now.Hour()
	switch {
	case hour == h.buyHour && gate.CanTrade(state, types.Buy):
		return types.Decision{Action: types.Buy, Reason: fmt.Sprintf("buy window at hour %d, state %s", hour, state)}
	case hour == h.sellHour && gate.CanTrade(state, types.Sell):
		return types.Decision{Action: types.Sell, Reason: fmt.Sprintf("sell window at hour %d, state %s", hour, state)}
	case hour == h.buyHour || hour == h.sellHour:
		return types.Decision{Reason: fmt.Sprintf("window at hour %d already satisfied, state %s", hour, state)}
	}
	return types.Decision{Reason: fmt.Sprintf("no window at hour %d", hour)}
}
