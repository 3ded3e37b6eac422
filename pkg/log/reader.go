package log

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects log events. Zero-valued fields match everything.
type Filter struct {
	ConnectionID string
	Direction    *Direction
	Worker       *Worker
	Category     *Category

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time

	PeerAddress string
}

// Match reports whether event passes every criterion of f.
func (f *Filter) Match(event Event) bool {
	switch {
	case f.ConnectionID != "" && event.ConnectionID != f.ConnectionID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Worker != nil && event.Worker != *f.Worker:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	case f.PeerAddress != "" && event.PeerAddress != f.PeerAddress:
		return false
	}
	return true
}

// Reader streams events from a log file written by FileLogger.
type Reader struct {
	file    *os.File
	dec     *cbor.Decoder
	filter  Filter
	created time.Time
	empty   bool
}

// NewReader opens a log file for reading every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a log file for reading the events that match filter.
// The file header is checked before returning.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{file: f, dec: decMode.NewDecoder(f), filter: filter}
	h, err := readHeader(r.dec)
	switch {
	case errors.Is(err, io.EOF):
		r.empty = true
	case err != nil:
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	default:
		r.created = h.Created
	}
	return r, nil
}

// Created returns when the log file was started. It is zero for an empty
// file.
func (r *Reader) Created() time.Time {
	return r.created
}

// Next returns the next matching event, io.EOF at the end of the log, or
// ErrTruncated if the log ends inside a record.
func (r *Reader) Next() (Event, error) {
	if r.empty {
		return Event{}, io.EOF
	}
	for {
		var event Event
		if err := r.dec.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return Event{}, ErrTruncated
			}
			return Event{}, err
		}
		if r.filter.Match(event) {
			return event, nil
		}
	}
}

// Events iterates over the remaining matching events. A read error is
// yielded once and ends the iteration; io.EOF is not yielded.
func (r *Reader) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			event, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
