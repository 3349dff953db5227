package log

import "testing"

// captureLogger records events for test assertions.
type captureLogger struct {
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.events = append(c.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}
	multi := NewMultiLogger(a, b, NoopLogger{})

	multi.Log(Event{ConnectionID: "x"})
	multi.Log(Event{ConnectionID: "y"})

	for name, c := range map[string]*captureLogger{"a": a, "b": b} {
		if len(c.events) != 2 {
			t.Errorf("logger %s: got %d events, want 2", name, len(c.events))
			continue
		}
		if c.events[0].ConnectionID != "x" || c.events[1].ConnectionID != "y" {
			t.Errorf("logger %s: wrong events %v", name, c.events)
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	a := &captureLogger{}
	multi := NewMultiLogger(nil, a, nil)

	multi.Log(Event{ConnectionID: "x"})

	if len(a.events) != 1 {
		t.Errorf("got %d events, want 1", len(a.events))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	// No loggers configured: must not panic.
	NewMultiLogger().Log(Event{})
}
