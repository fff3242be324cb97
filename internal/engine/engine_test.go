package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourly-trading-bot/internal/execlog"
	"hourly-trading-bot/internal/gate"
	"hourly-trading-bot/internal/ledger"
	"hourly-trading-bot/internal/strategy"
	"hourly-trading-bot/internal/types"
)

type fakeBroker struct {
	err   error
	calls int
	last  types.OrderReq
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return types.OrderResp{}, f.err
	}
	price := decimal.NewFromInt(101)
	return types.OrderResp{OrderID: "ord-1", Status: "filled", FilledPrice: &price}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(year int, month time.Month, day, hour int) {
	c.t = time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	eng  *Engine
	led  *ledger.Store
	exec *execlog.Log
	brk  *fakeBroker
	clk  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	clk := &clock{}
	clk.set(2025, 3, 10, 9)

	led := ledger.New(dir, "algo_test", time.UTC)
	led.SetNow(clk.now)
	require.NoError(t, led.Load())

	exec := execlog.New(dir, "algo_test", time.UTC)
	exec.SetNow(clk.now)

	brk := &fakeBroker{}
	eng := New("BTC/USD", decimal.RequireFromString("0.0001"), led, exec, brk, strategy.NewHourly(10, 15), time.UTC)
	eng.SetNow(clk.now)

	return &fixture{eng: eng, led: led, exec: exec, brk: brk, clk: clk}
}

func (f *fixture) tick(t *testing.T) *types.TickResult {
	t.Helper()
	res, err := f.eng.Tick(context.Background())
	require.NoError(t, err)
	return res
}

func TestBuyWindowPlacesOrderOnce(t *testing.T) {
	f := newFixture(t)

	f.clk.set(2025, 3, 10, 10)
	res := f.tick(t)

	assert.Equal(t, types.Buy, res.Action)
	assert.Equal(t, "Bought", res.Notes)
	assert.Equal(t, 1, f.brk.calls)
	assert.Equal(t, types.Buy, f.brk.last.Side)
	assert.True(t, f.led.HasTradeToday(types.Buy))

	// A second tick inside the same window must not buy again.
	res = f.tick(t)
	assert.Equal(t, "No Action", res.Notes)
	assert.Equal(t, 1, f.brk.calls)
}

func TestSellRequiresPriorBuy(t *testing.T) {
	f := newFixture(t)

	f.clk.set(2025, 3, 10, 15)
	res := f.tick(t)
	assert.Equal(t, "No Action", res.Notes)
	assert.Zero(t, f.brk.calls)
}

func TestFullTradingDay(t *testing.T) {
	f := newFixture(t)

	f.clk.set(2025, 3, 10, 10)
	assert.Equal(t, "Bought", f.tick(t).Notes)

	f.clk.set(2025, 3, 10, 12)
	assert.Equal(t, "No Action", f.tick(t).Notes)

	f.clk.set(2025, 3, 10, 15)
	assert.Equal(t, "Sold", f.tick(t).Notes)
	assert.True(t, f.led.HasTradeToday(types.Buy))
	assert.True(t, f.led.HasTradeToday(types.Sell))

	// A further tick in the sell window does not re-sell.
	assert.Equal(t, "No Action", f.tick(t).Notes)
	assert.Equal(t, 2, f.brk.calls)

	entries, err := f.exec.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4, "one execution entry per tick, trade or not")
	assert.Equal(t, []int{10, 12, 15, 15}, []int{
		entries[0].CurrentHour, entries[1].CurrentHour, entries[2].CurrentHour, entries[3].CurrentHour,
	})
}

func TestBrokerFailureKeepsGateOpen(t *testing.T) {
	f := newFixture(t)
	f.brk.err = errors.New("connection reset")

	f.clk.set(2025, 3, 10, 10)
	res := f.tick(t)

	assert.Equal(t, "Buy failed", res.Notes)
	require.NotNil(t, res.Record)
	assert.Equal(t, types.StatusError, res.Record.Status)
	assert.Equal(t, "connection reset", res.Record.Details.ErrorMessage)
	assert.Equal(t, gate.NoTradeYet, gate.FromRecords(f.led.Buffer().Trades))

	// Same-day retry is still permitted and succeeds.
	f.brk.err = nil
	res = f.tick(t)
	assert.Equal(t, "Bought", res.Notes)
	assert.Len(t, f.led.Buffer().Trades, 2, "the failed attempt stays in the ledger")
}

func TestDayRolloverResetsGateAndArchives(t *testing.T) {
	f := newFixture(t)

	f.clk.set(2025, 3, 10, 10)
	f.tick(t)
	f.clk.set(2025, 3, 10, 15)
	f.tick(t)

	// Next day: buffer reset, both records in the archive, buying allowed.
	f.clk.set(2025, 3, 11, 10)
	res := f.tick(t)

	assert.Equal(t, "Bought", res.Notes)
	assert.Len(t, f.led.ArchiveState().Trades, 2)
	assert.Len(t, f.led.Buffer().Trades, 1)
	assert.Equal(t, "2025-03-11", f.led.Buffer().Date)
}

func TestTickRecordsHoldDecisions(t *testing.T) {
	f := newFixture(t)

	f.clk.set(2025, 3, 10, 3)
	res := f.tick(t)
	assert.Equal(t, "No Action", res.Notes)
	assert.Equal(t, 3, res.Hour)

	entries, err := f.exec.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "No Action", entries[0].Notes)
}
