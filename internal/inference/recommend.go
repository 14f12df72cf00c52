package inference

const (
	RecommendDownsize = "Downsize or shut down VM"
	RecommendScaleOut = "Scale out / add capacity"
	RecommendNormal   = "Operating normally"
)

const (
	DefaultIdleThreshold  = 10.0
	DefaultScaleThreshold = 80.0
)

// Policy maps a single utilization sample to a scaling recommendation. Both
// thresholds are exclusive.
type Policy struct {
	IdleThreshold  float64
	ScaleThreshold float64
}

func DefaultPolicy() Policy {
	return Policy{IdleThreshold: DefaultIdleThreshold, ScaleThreshold: DefaultScaleThreshold}
}

func (p Policy) Recommend(cpuAvg float64) string {
	switch {
	case cpuAvg < p.IdleThreshold:
		return RecommendDownsize
	case cpuAvg > p.ScaleThreshold:
		return RecommendScaleOut
	default:
		return RecommendNormal
	}
}

// Recommend applies the default policy.
func Recommend(cpuAvg float64) string {
	return DefaultPolicy().Recommend(cpuAvg)
}
