package interfaces

import (
	"context"
	"time"

	"hourly-trading-bot/internal/gate"
	"hourly-trading-bot/internal/types"
)

// Decider picks the action for one tick from the wall clock and the
// current gate state. It never mutates state.
type Decider interface {
	Decide(ctx context.Context, now time.Time, state gate.State) types.Decision
}
