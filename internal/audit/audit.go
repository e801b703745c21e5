// Package audit keeps a tamper-evident record of probe runs. Each aggregate
// check appends one line to a JSONL log with SHA-256 hash chaining: an
// attacker who can falsify a verdict after the fact still has to rewrite
// every following line.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eyad-hamdy98/CheckBeer/probe"
)

// GenesisHash is the prev_hash for the first entry in a new log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Verdict is one detector's outcome within a run entry.
type Verdict struct {
	Detector   string `json:"detector"`
	Suspicious bool   `json:"suspicious"`
}

// Entry is one probe run in the hash-chained JSONL log. All fields are
// structs, no maps, so json.Marshal field order is deterministic and the
// chain hashes reproduce.
type Entry struct {
	Timestamp  string    `json:"ts"`
	Snapshot   string    `json:"snapshot,omitempty"`
	Suspicious bool      `json:"suspicious"`
	Detectors  []Verdict `json:"detectors"`
	PrevHash   string    `json:"prev_hash"`
}

// EntryFromReport flattens an aggregate report into a log entry.
func EntryFromReport(r probe.AggregateReport, snapshot string) Entry {
	e := Entry{
		Snapshot:   snapshot,
		Suspicious: r.Suspicious,
	}
	for _, d := range r.Results {
		e.Detectors = append(e.Detectors, Verdict{Detector: d.Detector, Suspicious: d.Suspicious})
	}
	return e
}

// Log is an append-only JSONL run log with SHA-256 hash chaining.
type Log struct {
	path     string
	file     *os.File
	prevHash string
	mu       sync.Mutex
}

// Open opens (or creates) a run log for appending. If the file already
// exists, the last line is read back to recover the chain tail.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	prevHash := GenesisHash

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("audit: read existing log: %w", err)
		}
		scanner := bufio.NewScanner(f)
		var lastLine []byte
		for scanner.Scan() {
			lastLine = append(lastLine[:0], scanner.Bytes()...)
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("audit: scan existing log: %w", err)
		}
		if len(lastLine) > 0 {
			prevHash = HashLine(lastLine)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	return &Log{path: path, file: file, prevHash: prevHash}, nil
}

// Record appends an entry with hash chaining. It sets the entry's PrevHash
// and Timestamp (if empty), writes the line, and syncs to disk.
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}
	entry.PrevHash = l.prevHash

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}

	l.prevHash = HashLine(line)
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
