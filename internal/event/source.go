package event

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/sugawarayuuta/sonnet"
)

// Source iterates events in arrival order. Next returns io.EOF once the
// source is exhausted.
type Source interface {
	Next() (Event, error)
}

// SliceSource replays an in-memory list of events.
type SliceSource struct {
	events []Event
	pos    int
}

func NewSliceSource(events ...Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

const maxLineSize = 16 << 20

// JSONSource decodes one Record per line. Blank lines are skipped.
type JSONSource struct {
	scanner *bufio.Scanner
	line    int
}

func NewJSONSource(r io.Reader) *JSONSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &JSONSource{scanner: sc}
}

func (s *JSONSource) Next() (Event, error) {
	for s.scanner.Scan() {
		s.line++
		raw := bytes.TrimSpace(s.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec := &Record{}
		if err := sonnet.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("event: line %d: %w", s.line, err)
		}
		return rec, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
