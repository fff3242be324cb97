// Package execlog is the append-only audit trail of scheduler ticks. One
// entry is written per tick whether or not a trade was attempted. It is
// observability only: nothing ever reads it back for decisions, and a
// failed write must not take down the scheduling loop.
package execlog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	schemaVersion = 1
	dumpFile      = "dump.json"
)

type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	CurrentHour int       `json:"current_hour"`
	Notes       string    `json:"notes"`
}

type document struct {
	SchemaVersion int     `json:"schema_version"`
	Executions    []Entry `json:"executions"`
}

type Log struct {
	path string
	loc  *time.Location
	now  func() time.Time
}

func New(dataDir, identity string, loc *time.Location) *Log {
	return &Log{
		path: filepath.Join(dataDir, identity, dumpFile),
		loc:  loc,
		now:  time.Now,
	}
}

func (l *Log) SetNow(now func() time.Time) { l.now = now }

// Record appends one entry and rewrites the document atomically. A dump
// that no longer parses is replaced rather than blocking every future
// tick; it is never consulted for decisions.
func (l *Log) Record(notes string) error {
	doc := document{SchemaVersion: schemaVersion}
	if b, err := os.ReadFile(l.path); err == nil {
		var existing document
		if json.Unmarshal(b, &existing) == nil && existing.SchemaVersion <= schemaVersion {
			doc.Executions = existing.Executions
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	now := l.now().In(l.loc)
	doc.Executions = append(doc.Executions, Entry{
		Timestamp:   now,
		CurrentHour: now.Hour(),
		Notes:       notes,
	})

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), "."+dumpFile+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Entries reads the recorded executions, oldest first. Used by tests and
// the reporting surface, never by the trading path.
func (l *Log) Entries() ([]Entry, error) {
	b, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc.Executions, nil
}
