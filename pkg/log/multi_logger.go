package log

// MultiLogger fans one event stream out to several loggers. The device
// binary uses it to feed the slog console adapter and the CBOR event
// log from the same protocol events.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger builds a fan-out over the given loggers. Nil entries
// are skipped, so optionally-configured sinks can be passed directly.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.sinks = append(m.sinks, l)
		}
	}
	return m
}

// Log forwards the event to every sink in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.sinks {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
