package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventTypeAnomalyDetected, "stream", "spike").
		WithSeverity(SeverityWarning).
		WithData(PowerResponse{DCPowerW: 1, Anomaly: true}).
		WithTraceID("t-1")

	assert.Len(t, e.ID, 36)
	assert.Equal(t, SeverityWarning, e.Severity)
	assert.Equal(t, "t-1", e.TraceID)
	assert.False(t, e.Timestamp.IsZero())
	assert.NotEqual(t, e.ID, NewEvent(EventTypeError, "", "").ID)
}

func TestNewEvent_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, SeverityInfo, NewEvent(EventTypePowerSampled, "", "").Severity)
}

func TestVMInferenceResponse_FieldNames(t *testing.T) {
	data, err := json.Marshal(VMInferenceResponse{CPUAvg: 90, CoreCount: 16, EstimatedPowerW: 3696, Cluster: 1, Recommendation: "x"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"cpu_avg":90,"core_count":16,"estimated_power_w":3696,"cluster":1,"recommendation":"x"}`,
		string(data))
}
