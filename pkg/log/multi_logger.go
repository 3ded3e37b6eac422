package log

// MultiLogger fans each event out to several loggers, in order.
type MultiLogger []Logger

// NewMultiLogger returns a MultiLogger over the non-nil loggers.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	var m MultiLogger
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

// Log passes the event to every logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

// Combine returns a Logger for the non-nil loggers: nil when there are
// none, the logger itself when there is one, and a MultiLogger otherwise.
func Combine(loggers ...Logger) Logger {
	m := NewMultiLogger(loggers...)
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	default:
		return m
	}
}

var _ Logger = MultiLogger(nil)
