package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourly-trading-bot/internal/types"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(t *testing.T, value string, hour int) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func record(ts time.Time, side types.Side, status types.Status) types.TradeRecord {
	price := decimal.NewFromInt(101)
	rec := types.TradeRecord{
		Timestamp: ts,
		Type:      side,
		Status:    status,
		Details: types.TradeDetails{
			Symbol:   "BTC/USD",
			Quantity: decimal.RequireFromString("0.0001"),
		},
	}
	if status == types.StatusSuccess {
		rec.Details.OrderID = "ord-1"
		rec.Details.FilledPrice = &price
	} else {
		rec.Details.ErrorMessage = "order rejected"
	}
	return rec
}

func newStore(t *testing.T, dir string, now time.Time) *Store {
	t.Helper()
	s := New(dir, "algo_test", time.UTC)
	s.SetNow(fixedClock(now))
	require.NoError(t, s.Load())
	return s
}

func TestLoadMissingStateIsFresh(t *testing.T) {
	now := day(t, "2025-03-10", 9)
	s := newStore(t, t.TempDir(), now)

	assert.Empty(t, s.ArchiveState().Trades)
	assert.Equal(t, "2025-03-10", s.Buffer().Date)
	assert.Empty(t, s.Buffer().Trades)
}

func TestAppendTradePersistsImmediately(t *testing.T) {
	dir := t.TempDir()
	now := day(t, "2025-03-10", 10)
	s := newStore(t, dir, now)

	require.NoError(t, s.AppendTrade(record(now, types.Buy, types.StatusSuccess)))

	// A second store sees the record without any flush step in between.
	s2 := newStore(t, dir, now)
	require.Len(t, s2.Buffer().Trades, 1)
	assert.Equal(t, types.Buy, s2.Buffer().Trades[0].Type)
	assert.True(t, s2.HasTradeToday(types.Buy))
}

func TestHasTradeTodayIgnoresErrors(t *testing.T) {
	now := day(t, "2025-03-10", 10)
	s := newStore(t, t.TempDir(), now)

	require.NoError(t, s.AppendTrade(record(now, types.Buy, types.StatusError)))
	assert.False(t, s.HasTradeToday(types.Buy), "ERROR records must not satisfy the gate")

	require.NoError(t, s.AppendTrade(record(now, types.Buy, types.StatusSuccess)))
	assert.True(t, s.HasTradeToday(types.Buy))
	assert.False(t, s.HasTradeToday(types.Sell))
}

func TestLoadCorruptArchiveFails(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "algo_test")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, archiveFile), []byte("{not json"), 0o644))

	s := New(dir, "algo_test", time.UTC)
	s.SetNow(fixedClock(day(t, "2025-03-10", 9)))
	err := s.Load()
	require.Error(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestLoadCorruptBufferFails(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "algo_test")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, bufferFile), []byte(`{"date":"not-a-date","trades":[]}`), 0o644))

	s := New(dir, "algo_test", time.UTC)
	s.SetNow(fixedClock(day(t, "2025-03-10", 9)))

	var perr *PersistenceError
	require.ErrorAs(t, s.Load(), &perr)
}

func TestLoadRejectsForeignIdentity(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "algo_test")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	other := Archive{SchemaVersion: schemaVersion, Identity: "someone_else"}
	b, err := json.Marshal(other)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(sub, archiveFile), b, 0o644))

	s := New(dir, "algo_test", time.UTC)
	s.SetNow(fixedClock(day(t, "2025-03-10", 9)))

	var perr *PersistenceError
	require.ErrorAs(t, s.Load(), &perr)
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "algo_test")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, archiveFile),
		[]byte(`{"schema_version":99,"identity":"algo_test","trades":[]}`), 0o644))

	s := New(dir, "algo_test", time.UTC)
	s.SetNow(fixedClock(day(t, "2025-03-10", 9)))

	var perr *PersistenceError
	require.ErrorAs(t, s.Load(), &perr)
}

func TestPersistedFilesAreAlwaysParseable(t *testing.T) {
	dir := t.TempDir()
	now := day(t, "2025-03-10", 10)
	s := newStore(t, dir, now)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendTrade(record(now.Add(time.Duration(i)*time.Minute), types.Buy, types.StatusError)))

		// Concurrent readers must never see a torn document.
		b, err := os.ReadFile(filepath.Join(dir, "algo_test", bufferFile))
		require.NoError(t, err)
		var buf DailyBuffer
		require.NoError(t, json.Unmarshal(b, &buf))
		assert.Len(t, buf.Trades, i+1)
	}
}
