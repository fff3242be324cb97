package ledger

import (
	"os"
	"sort"
	"time"

	"hourly-trading-bot/internal/types"
)

// ReadTrades loads the archive and current-day buffer of one identity
// straight from disk and returns every trade, newest first. It is the
// read-only contract for the reporting surface and takes no part in the
// single-writer model; atomic-replace writes are what make this safe to
// call while the bot is running.
func ReadTrades(dataDir, identity string, loc *time.Location) ([]types.TradeRecord, error) {
	s := New(dataDir, identity, loc)
	archive, err := loadArchive(s.archivePath(), identity)
	if err != nil {
		return nil, err
	}
	buffer, err := loadBuffer(s.bufferPath(), s.today())
	if err != nil {
		return nil, err
	}

	trades := make([]types.TradeRecord, 0, len(archive.Trades)+len(buffer.Trades))
	trades = append(trades, archive.Trades...)
	trades = append(trades, buffer.Trades...)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.After(trades[j].Timestamp)
	})
	return trades, nil
}

// ListIdentities returns the algorithm identities that have persisted
// state under dataDir, one directory per identity.
func ListIdentities(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
