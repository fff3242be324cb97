// Package ledger is the durable record of all trades for one algorithm
// identity. State lives in two JSON documents under <data_dir>/<identity>/:
// db.json, the append-only archive of prior days, and today.json, the
// mutable current-day buffer the daily trade gate is answered from.
//
// Every write replaces the whole document atomically (temp file + rename),
// so the reporting reader can load either file at any moment without
// observing a torn write.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hourly-trading-bot/internal/types"
)

const (
	schemaVersion = 1

	archiveFile = "db.json"
	bufferFile  = "today.json"

	dayFormat = "2006-01-02"
)

// Archive holds every trade from days already rolled over. LastRollover is
// the buffer date most recently merged in; it is written in the same
// atomic replace as the merged trades and is what makes a crashed rollover
// safe to retry.
type Archive struct {
	SchemaVersion int                 `json:"schema_version"`
	Identity      string              `json:"identity"`
	LastRollover  string              `json:"last_rollover,omitempty"`
	Trades        []types.TradeRecord `json:"trades"`
}

// DailyBuffer holds the trades of a single calendar day. Exactly one
// buffer is active at a time; rollover replaces it wholesale.
type DailyBuffer struct {
	SchemaVersion int                 `json:"schema_version"`
	Date          string              `json:"date"`
	Trades        []types.TradeRecord `json:"trades"`
}

// PersistenceError reports unreadable or corrupt durable state. Missing
// files are not persistence errors; they yield fresh empty state.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger: persistence failure at %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the single writer for one identity's ledger files. It is not
// safe for concurrent use; the scheduler drives all mutation from one
// goroutine.
type Store struct {
	identity string
	dir      string
	loc      *time.Location
	now      func() time.Time

	archive *Archive
	buffer  *DailyBuffer
}

func New(dataDir, identity string, loc *time.Location) *Store {
	return &Store{
		identity: identity,
		dir:      filepath.Join(dataDir, identity),
		loc:      loc,
		now:      time.Now,
	}
}

// SetNow overrides the clock. Tests use this to cross day boundaries.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

func (s *Store) archivePath() string { return filepath.Join(s.dir, archiveFile) }
func (s *Store) bufferPath() string  { return filepath.Join(s.dir, bufferFile) }

func (s *Store) today() string { return s.now().In(s.loc).Format(dayFormat) }

// Load reconstructs state from disk. Missing files yield an empty archive
// and a fresh buffer dated today; malformed files fail with a
// PersistenceError rather than silently discarding data.
func (s *Store) Load() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &PersistenceError{Path: s.dir, Err: err}
	}

	archive, err := loadArchive(s.archivePath(), s.identity)
	if err != nil {
		return err
	}
	buffer, err := loadBuffer(s.bufferPath(), s.today())
	if err != nil {
		return err
	}

	s.archive = archive
	s.buffer = buffer
	return nil
}

func loadArchive(path, identity string) (*Archive, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Archive{SchemaVersion: schemaVersion, Identity: identity}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	var a Archive
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	if a.SchemaVersion > schemaVersion {
		return nil, &PersistenceError{Path: path, Err: fmt.Errorf("unsupported schema version %d", a.SchemaVersion)}
	}
	if a.Identity != "" && a.Identity != identity {
		return nil, &PersistenceError{Path: path, Err: fmt.Errorf("archive belongs to identity %q, want %q", a.Identity, identity)}
	}
	a.SchemaVersion = schemaVersion
	a.Identity = identity
	return &a, nil
}

func loadBuffer(path, today string) (*DailyBuffer, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &DailyBuffer{SchemaVersion: schemaVersion, Date: today}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	var buf DailyBuffer
	if err := json.Unmarshal(b, &buf); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	if buf.SchemaVersion > schemaVersion {
		return nil, &PersistenceError{Path: path, Err: fmt.Errorf("unsupported schema version %d", buf.SchemaVersion)}
	}
	if _, err := time.Parse(dayFormat, buf.Date); err != nil {
		return nil, &PersistenceError{Path: path, Err: fmt.Errorf("invalid buffer date %q: %w", buf.Date, err)}
	}
	buf.SchemaVersion = schemaVersion
	return &buf, nil
}

// AppendTrade appends to the current-day buffer and persists it
// immediately, so a crash can never lose an acknowledged record.
func (s *Store) AppendTrade(rec types.TradeRecord) error {
	s.buffer.Trades = append(s.buffer.Trades, rec)
	if err := s.persistBuffer(s.buffer); err != nil {
		s.buffer.Trades = s.buffer.Trades[:len(s.buffer.Trades)-1]
		return err
	}
	return nil
}

// HasTradeToday reports whether a SUCCESS trade of the given type exists
// in the current-day buffer. ERROR attempts do not count, so the same
// type may be retried until it succeeds.
func (s *Store) HasTradeToday(side types.Side) bool {
	for _, t := range s.buffer.Trades {
		if t.Type == side && t.Succeeded() {
			return true
		}
	}
	return false
}

// Buffer returns the current-day buffer for gate evaluation.
func (s *Store) Buffer() DailyBuffer { return *s.buffer }

// ArchiveState returns the archive for inspection.
func (s *Store) ArchiveState() Archive { return *s.archive }

func (s *Store) persistArchive(a *Archive) error {
	return writeJSON(s.archivePath(), a)
}

func (s *Store) persistBuffer(b *DailyBuffer) error {
	return writeJSON(s.bufferPath(), b)
}

// writeJSON publishes a complete new version of the document via rename,
// the atomic-replace contract concurrent readers rely on.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
