package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/banshee-data/irdump/internal/irdecode"
)

// CSVRecord returns the row for one decoded signal: the name followed by
// one 0/1 field per packet.
func CSVRecord(sig irdecode.ParsedSignal) []string {
	record := make([]string, 0, len(sig.Packets)+1)
	record = append(record, sig.Name)
	return append(record, sig.PacketStrings()...)
}

// CSVWriter writes decoded signals as CSV rows. Rows carry one field per
// packet, so their lengths differ.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSVWriter over w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write appends the row for sig.
func (c *CSVWriter) Write(sig irdecode.ParsedSignal) error {
	if err := c.w.Write(CSVRecord(sig)); err != nil {
		return fmt.Errorf("write csv row for %q: %w", sig.Name, err)
	}
	return nil
}

// Flush writes buffered rows and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteCSV writes one row per signal in order and flushes.
func WriteCSV(w io.Writer, signals []irdecode.ParsedSignal) error {
	cw := NewCSVWriter(w)
	for _, sig := range signals {
		if err := cw.Write(sig); err != nil {
			return err
		}
	}
	return cw.Flush()
}
