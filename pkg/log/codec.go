package log

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Log file format. A file holds one header record followed by a stream of
// CBOR-encoded events.
const (
	FileMagic     = "linkd-log"
	FormatVersion = 1
)

var (
	// ErrNotEventLog is returned when a file does not start with a log header.
	ErrNotEventLog = errors.New("not a link event log")

	// ErrUnsupportedFormat is returned for logs written by a newer format.
	ErrUnsupportedFormat = errors.New("unsupported link event log format")

	// ErrTruncated is returned when the last record of a log was cut short,
	// usually because the writer was killed mid-write.
	ErrTruncated = errors.New("truncated link event record")
)

// fileHeader is the first record of every log file.
type fileHeader struct {
	Magic   string    `cbor:"1,keyasint"`
	Version int       `cbor:"2,keyasint"`
	Created time.Time `cbor:"3,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Canonical key order keeps identical events byte-identical.
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyQuiet,
		IndefLength:     cbor.IndefLengthAllowed,
		MaxNestedLevels: 8,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor decoder mode: %v", err))
	}
}

// EncodeEvent encodes a single event.
func EncodeEvent(event Event) ([]byte, error) {
	return encMode.Marshal(event)
}

// DecodeEvent decodes a single event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := decMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// writeHeader starts a new log file.
func writeHeader(enc *cbor.Encoder, now time.Time) error {
	return enc.Encode(fileHeader{
		Magic:   FileMagic,
		Version: FormatVersion,
		Created: now,
	})
}

// readHeader consumes and checks the header of a log file. An empty file
// returns io.EOF.
func readHeader(dec *cbor.Decoder) (fileHeader, error) {
	var h fileHeader
	if err := dec.Decode(&h); err != nil {
		if errors.Is(err, io.EOF) {
			return h, io.EOF
		}
		return h, fmt.Errorf("%w: %v", ErrNotEventLog, err)
	}
	if h.Magic != FileMagic {
		return h, ErrNotEventLog
	}
	if h.Version > FormatVersion {
		return h, fmt.Errorf("%w: version %d", ErrUnsupportedFormat, h.Version)
	}
	return h, nil
}
