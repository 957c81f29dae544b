package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

var csvHeader = []string{"time", "tick", "event", "process", "from", "to", "detail"}

// WriteEventsCSV writes the event log as CSV with a header row.
func WriteEventsCSV(w io.Writer, events []EventRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{
			strconv.FormatInt(ev.Time, 10),
			strconv.Itoa(ev.Tick),
			ev.Kind,
			ev.Process,
			ev.From,
			ev.To,
			ev.Detail,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveEventsCSV creates path and writes the event log to it.
func SaveEventsCSV(path string, events []EventRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteEventsCSV(f, events); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// MarshalDocument renders the full result as YAML.
func (r *Result) MarshalDocument() ([]byte, error) {
	return yaml.Marshal(r)
}

// ParseResult decodes a result previously produced by MarshalDocument.
func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}
	return &r, nil
}

// SaveYAML writes the full result to path.
func SaveYAML(path string, r *Result) error {
	data, err := r.MarshalDocument()
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
