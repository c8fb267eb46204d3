package mapdata

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"strings"
)

// Delimiter separates fields within a record.
const Delimiter = ','

// maxLineSize bounds a single record. Distribution lines are short; the
// largest real-world lines are META lists.
const maxLineSize = 1 << 20

// Record is one line of map data split into fields.
type Record []string

// Field returns field i, or "" when the record is shorter.
func (r Record) Field(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// Blank reports whether the record came from an empty line.
func (r Record) Blank() bool {
	return len(r) == 1 && r[0] == ""
}

// Reader splits map data into records.
//
// A Reader is not restartable: once a record has been returned it cannot be
// read again, and re-parsing requires a new Reader over fresh input.
type Reader struct {
	s    *bufio.Scanner
	rec  Record
	line int
	err  error
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.Split(scanTerminatedLines)
	return &Reader{s: s}
}

// NewStringReader returns a Reader over raw text.
func NewStringReader(text string) *Reader {
	return NewReader(strings.NewReader(text))
}

// Next advances to the next record. It returns false at end of input or on
// a read error; check [Reader.Err] afterwards.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.s.Scan() {
		r.err = r.s.Err()
		r.rec = nil
		return false
	}
	r.line++
	r.rec = Split(r.s.Text())
	return true
}

// Record returns the current record.
func (r *Reader) Record() Record { return r.rec }

// Line returns the 1-based line number of the current record.
func (r *Reader) Line() int { return r.line }

// Err returns the first non-EOF error encountered.
func (r *Reader) Err() error { return r.err }

// All returns the remaining records keyed by line number.
// Iterating consumes the Reader.
func (r *Reader) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for r.Next() {
			if !yield(r.line, r.rec) {
				return
			}
		}
	}
}

// Split splits a single line into fields.
func Split(line string) Record {
	return strings.Split(line, string(Delimiter))
}

// scanTerminatedLines is a bufio.SplitFunc like bufio.ScanLines except that
// a final line without a terminating newline is dropped instead of being
// returned as a token.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	if atEOF && len(data) > 0 {
		return len(data), nil, nil
	}
	return 0, nil, nil
}
