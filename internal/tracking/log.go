package tracking

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Outcome records what happened to a tracking event.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// LogEntry is one row of the interaction log.
type LogEntry struct {
	Timestamp        time.Time
	TokenID          string
	RecommendationID string
	Action           Action
	Outcome          Outcome
	Detail           string
}

// LogFile is the interaction log's name inside its directory.
const LogFile = "interactions.csv"

var logHeader = []string{"timestamp", "token_id", "recommendation_id", "action", "outcome", "detail"}

const (
	colTimestamp = iota
	colTokenID
	colRecommendationID
	colAction
	colOutcome
	colDetail
	numFields
)

// logMu serializes appends from concurrent trackers in this process.
var logMu sync.Mutex

func marshalEntry(e LogEntry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colTokenID] = e.TokenID
	row[colRecommendationID] = e.RecommendationID
	row[colAction] = string(e.Action)
	row[colOutcome] = string(e.Outcome)
	row[colDetail] = e.Detail
	return row
}

func unmarshalEntry(record []string) (LogEntry, error) {
	if len(record) != numFields {
		return LogEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return LogEntry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return LogEntry{
		Timestamp:        ts,
		TokenID:          record[colTokenID],
		RecommendationID: record[colRecommendationID],
		Action:           Action(record[colAction]),
		Outcome:          Outcome(record[colOutcome]),
		Detail:           record[colDetail],
	}, nil
}

// AppendLog writes entries to <dir>/interactions.csv, creating the
// directory, file and header as needed.
func AppendLog(dir string, entries ...LogEntry) error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, LogFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening interaction log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(logHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLog returns every entry in <dir>/interactions.csv, or nil if the
// file does not exist.
func ReadLog(dir string) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(dir, LogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening interaction log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]LogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading interaction log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []LogEntry
	for i, rec := range records[1:] {
		e, err := unmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
