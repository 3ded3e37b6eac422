package log

// Logger receives link events from the connection manager.
//
// Log is called synchronously from manager and worker goroutines, so
// implementations must be safe for concurrent use and must not block.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event.
type NoopLogger struct{}

// Log does nothing.
func (NoopLogger) Log(Event) {}

// LoggerFunc lets an ordinary function serve as a Logger.
type LoggerFunc func(event Event)

// Log calls f.
func (f LoggerFunc) Log(event Event) { f(event) }

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
