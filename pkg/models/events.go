package models

import "time"

type EventType string

const (
	EventTypePowerSampled    EventType = "power_sampled"
	EventTypeAnomalyDetected EventType = "anomaly_detected"
	EventTypeForecastMade    EventType = "forecast_made"
	EventTypeError           EventType = "error"
)

// AllEventTypes returns every event type the bus can carry.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypePowerSampled,
		EventTypeAnomalyDetected,
		EventTypeForecastMade,
		EventTypeError,
	}
}

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal telemetry event
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Source    string        `json:"source,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, source, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Source:    source,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}
