package events

import (
	"fmt"

	"github.com/OldStager01/energy-intelligence/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	source  string
	traceID string
}

func NewPublisher(bus *EventBus, source string) *Publisher {
	return &Publisher{bus: bus, source: source}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		source:  p.source,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) PowerSampled(reading *models.PowerResponse) {
	msg := fmt.Sprintf("Power sampled: %.2f W", reading.DCPowerW)
	p.publish(models.NewEvent(models.EventTypePowerSampled, p.source, msg).WithData(reading))
}

func (p *Publisher) AnomalyDetected(reading *models.PowerResponse) {
	msg := fmt.Sprintf("Anomalous power reading: %.2f W", reading.DCPowerW)
	event := models.NewEvent(models.EventTypeAnomalyDetected, p.source, msg).
		WithSeverity(models.SeverityWarning).
		WithData(reading)
	p.publish(event)
}

func (p *Publisher) ForecastMade(forecast *models.ForecastResponse) {
	msg := fmt.Sprintf("Next interval forecast: %.2f W", forecast.PredictedPowerW)
	p.publish(models.NewEvent(models.EventTypeForecastMade, p.source, msg).WithData(forecast))
}

func (p *Publisher) Error(message string, err error) {
	event := models.NewEvent(models.EventTypeError, p.source, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
