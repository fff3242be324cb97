package ledger

import "hourly-trading-bot/internal/types"

// Reconcile migrates the buffer into the archive when its date is no
// longer today. Invoked before any decision logic on every tick.
//
// The extended archive, including the advanced LastRollover marker, is
// persisted before the buffer is reset. A crash at any point leaves the
// operation safe to repeat:
//
//   - crash before the archive write lands: the old buffer is intact and
//     unarchived, the retry merges it again from scratch;
//   - crash after the archive write but before the buffer reset: the
//     retry sees LastRollover >= buffer date, skips the merge and only
//     resets the stale buffer, so nothing is duplicated.
func (s *Store) Reconcile() error {
	today := s.today()
	if s.buffer.Date == today {
		return nil
	}

	// ISO dates compare correctly as strings.
	if s.archive.LastRollover < s.buffer.Date {
		merged := &Archive{
			SchemaVersion: schemaVersion,
			Identity:      s.identity,
			LastRollover:  s.buffer.Date,
			Trades:        append(append([]types.TradeRecord{}, s.archive.Trades...), s.buffer.Trades...),
		}
		if err := s.persistArchive(merged); err != nil {
			return err
		}
		s.archive = merged
	}

	fresh := &DailyBuffer{SchemaVersion: schemaVersion, Date: today}
	if err := s.persistBuffer(fresh); err != nil {
		return err
	}
	s.buffer = fresh
	return nil
}
