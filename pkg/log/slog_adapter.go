package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter prints link events through an slog.Logger, one record per
// event. Events are logged at debug level, except error events which are
// raised to at least warn.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates an adapter logging to logger at debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter that logs at level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event as "link <category>" with its attributes.
func (a *SlogAdapter) Log(event Event) {
	level := a.level
	if event.Category == CategoryError && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	ctx := context.Background()
	if !a.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs, slog.String("worker", event.Worker.String()))
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn", event.ConnectionID))
	}
	if event.Direction != DirectionNone {
		attrs = append(attrs, slog.String("dir", event.Direction.String()))
	}
	if event.PeerAddress != "" || event.PeerName != "" {
		attrs = append(attrs, slog.Group("peer",
			slog.String("address", event.PeerAddress),
			slog.String("name", event.PeerName),
		))
	}
	if event.Variant != "" {
		attrs = append(attrs, slog.String("variant", event.Variant))
	}
	attrs = append(attrs, payloadAttrs(event)...)

	a.logger.LogAttrs(ctx, level, "link "+strings.ToLower(event.Category.String()), attrs...)
}

func payloadAttrs(event Event) []slog.Attr {
	switch {
	case event.Frame != nil:
		attrs := []slog.Attr{slog.Int("size", event.Frame.Size)}
		if event.Frame.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
		return attrs
	case event.StateChange != nil:
		return withReason([]slog.Attr{
			slog.String("from", event.StateChange.OldState),
			slog.String("to", event.StateChange.NewState),
		}, event.StateChange.Reason)
	case event.Link != nil:
		return withReason([]slog.Attr{slog.String("action", event.Link.Action.String())}, event.Link.Reason)
	case event.Notice != nil:
		return []slog.Attr{slog.String("notice", event.Notice.Message)}
	case event.Error != nil:
		return []slog.Attr{
			slog.String("error", event.Error.Message),
			slog.String("during", event.Error.Context),
		}
	}
	return nil
}

func withReason(attrs []slog.Attr, reason string) []slog.Attr {
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
