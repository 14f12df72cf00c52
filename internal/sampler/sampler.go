// Package sampler synthesizes "real-time" telemetry by perturbing the last recorded
// values. All draws come from one explicitly seeded random stream; draws are
// serialized so a sequential request order reproduces the same samples after a
// restart with the same seed.
package sampler

import (
	"math"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/OldStager01/energy-intelligence/pkg/models"
)

const (
	DefaultSeed          int64 = 42
	DefaultNoiseFraction       = 0.01
)

// Rand is the subset of *rand.Rand the sampler draws from.
type Rand interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Anchor provides the most recent recorded power reading.
type Anchor interface {
	Last() float64
}

type Config struct {
	NoiseFraction float64
	CoreCounts    []int
}

type Sampler struct {
	mu            sync.Mutex
	rnd           Rand
	anchor        Anchor
	noiseFraction float64
	coreCounts    []int
}

func New(anchor Anchor, rnd Rand, cfg Config) *Sampler {
	if cfg.NoiseFraction <= 0 {
		cfg.NoiseFraction = DefaultNoiseFraction
	}
	if len(cfg.CoreCounts) == 0 {
		cfg.CoreCounts = models.CoreCounts
	}
	counts := make([]int, len(cfg.CoreCounts))
	copy(counts, cfg.CoreCounts)

	return &Sampler{
		rnd:           rnd,
		anchor:        anchor,
		noiseFraction: cfg.NoiseFraction,
		coreCounts:    counts,
	}
}

// SamplePower draws one reading around the anchor value. One draw.
func (s *Sampler) SamplePower() models.PowerReading {
	s.mu.Lock()
	z := s.rnd.NormFloat64()
	s.mu.Unlock()

	return PerturbPower(s.anchor.Last(), s.noiseFraction, z)
}

// SampleVM draws a utilization and a core count. Two draws.
func (s *Sampler) SampleVM() models.VMSnapshot {
	s.mu.Lock()
	u := s.rnd.Float64()
	idx := s.rnd.Intn(len(s.coreCounts))
	s.mu.Unlock()

	return models.VMSnapshot{
		CPUAvg:    roundCPU(u * 100),
		CoreCount: s.coreCounts[idx],
	}
}

// PerturbPower applies standard-normal draw z scaled to fraction of last and floors
// the result at zero.
func PerturbPower(last, fraction, z float64) models.PowerReading {
	sigma := math.Abs(last) * fraction
	return models.PowerReading(math.Max(last+z*sigma, 0))
}

func roundCPU(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
