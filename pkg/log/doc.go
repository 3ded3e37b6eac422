// Package log provides structured capture of link events.
//
// This package defines the Logger interface and Event types for recording
// what the connection manager and its workers do: state transitions, links
// opened and closed, data frames in both directions, user notices and errors.
// It is separate from operational logging (slog) - link capture provides a
// complete machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/linkd/link.llog")
//
//	// Both: Combine skips nil loggers
//	cfg.ProtocolLogger = log.Combine(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// # Event Types
//
// Every event names the worker that produced it (manager, listener,
// connector, pump) and carries exactly one payload:
//   - FrameEvent: bytes read from or written to the link
//   - StateChangeEvent: a connection state transition
//   - LinkEvent: a link opened, closed or rejected by the tie-break
//   - NoticeEvent: a message shown to the user
//   - ErrorEventData: a failure in any worker
//
// # File Format
//
// Log files use the .llog extension. A file is a sequence of CBOR items: a
// header naming the format version, then one map per event with small
// integer keys. A writer killed mid-record leaves a truncated tail, which
// Reader reports as ErrTruncated after the last complete event. The
// linkd-log CLI tool provides viewing, filtering, export and statistics.
package log
