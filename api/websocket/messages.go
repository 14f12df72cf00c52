package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// MessageType doubles as the subscription topic.
type MessageType string

const (
	MessageTypePowerReading MessageType = "power_reading"
	MessageTypeAnomaly      MessageType = "anomaly"
	MessageTypeForecast     MessageType = "forecast"
	MessageTypeError        MessageType = "error"
)

// Topics lists every topic a client can subscribe to.
func Topics() []MessageType {
	return []MessageType{
		MessageTypePowerReading,
		MessageTypeAnomaly,
		MessageTypeForecast,
		MessageTypeError,
	}
}

func validTopic(t MessageType) bool {
	for _, known := range Topics() {
		if t == known {
			return true
		}
	}
	return false
}

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(msgType MessageType, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// IncomingMessage is sent by clients to change their subscriptions.
type IncomingMessage struct {
	Type   string        `json:"type"`
	Topics []MessageType `json:"topics,omitempty"`
}

type subscriptionUpdate struct {
	Type      string        `json:"type"`
	Action    string        `json:"action"`
	Topics    []MessageType `json:"topics"`
	Timestamp time.Time     `json:"timestamp"`
}

func messageTypeFor(eventType models.EventType) MessageType {
	switch eventType {
	case models.EventTypePowerSampled:
		return MessageTypePowerReading
	case models.EventTypeAnomalyDetected:
		return MessageTypeAnomaly
	case models.EventTypeForecastMade:
		return MessageTypeForecast
	case models.EventTypeError:
		return MessageTypeError
	default:
		return ""
	}
}

func messageFromEvent(event *models.Event) *OutgoingMessage {
	msgType := messageTypeFor(event.Type)
	if msgType == "" {
		return nil
	}
	msg := NewMessage(msgType, event.Data)
	msg.Timestamp = event.Timestamp
	msg.Severity = string(event.Severity)
	msg.Message = event.Message
	msg.TraceID = event.TraceID
	return msg
}
