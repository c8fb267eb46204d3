package mapdata

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer encodes records in map data format.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer that buffers output to w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes one record followed by a newline. Fields containing the
// delimiter or a line break cannot be represented and are rejected.
func (w *Writer) Write(rec Record) error {
	if w.err != nil {
		return w.err
	}
	for i, f := range rec {
		if strings.ContainsAny(f, ",\n\r") {
			return fmt.Errorf("field %d %q: contains delimiter or newline", i, f)
		}
	}
	if _, err := w.w.WriteString(strings.Join(rec, string(Delimiter))); err != nil {
		w.err = err
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteSection writes the marker record for s.
func (w *Writer) WriteSection(s Section) error {
	return w.Write(Record{s.String()})
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
