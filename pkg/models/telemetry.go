package models

// CoreCounts lists the core counts a simulated VM can report.
var CoreCounts = []int{2, 4, 8, 16, 32, 64}

// PowerReading is a datacenter power draw in watts. Never negative.
type PowerReading float64

// VMSnapshot is a single simulated VM observation.
type VMSnapshot struct {
	CPUAvg    float64 `json:"cpu_avg"`
	CoreCount int     `json:"core_count"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// PowerResponse is returned by GET /realtime/power.
type PowerResponse struct {
	DCPowerW float64 `json:"dc_power_w"`
	Anomaly  bool    `json:"anomaly"`
}

// ForecastResponse is returned by GET /realtime/predict.
type ForecastResponse struct {
	PredictedPowerW float64 `json:"predicted_power_w"`
}

// VMInferenceResponse is returned by GET /realtime/vm.
type VMInferenceResponse struct {
	CPUAvg          float64 `json:"cpu_avg"`
	CoreCount       int     `json:"core_count"`
	EstimatedPowerW float64 `json:"estimated_power_w"`
	Cluster         int     `json:"cluster"`
	Recommendation  string  `json:"recommendation"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
