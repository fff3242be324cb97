package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hourly-trading-bot/internal/gate"
	"hourly-trading-bot/internal/types"
)

func at(hour int) time.Time {
	return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
}

func TestDecide(t *testing.T) {
	h := NewHourly(10, 15)
	ctx := context.Background()

	cases := []struct {
		name  string
		hour  int
		state gate.State
		want  types.Side // empty means hold
	}{
		{"buy window, nothing yet", 10, gate.NoTradeYet, types.Buy},
		{"buy window, already bought", 10, gate.Bought, ""},
		{"buy window, day done", 10, gate.Sold, ""},
		{"sell window, bought", 15, gate.Bought, types.Sell},
		{"sell window, nothing to sell", 15, gate.NoTradeYet, ""},
		{"sell window, already sold", 15, gate.Sold, ""},
		{"outside windows", 12, gate.NoTradeYet, ""},
		{"midnight", 0, gate.NoTradeYet, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := h.Decide(ctx, at(tc.hour), tc.state)
			assert.Equal(t, tc.want, d.Action)
			assert.NotEmpty(t, d.Reason)
		})
	}
}
