package sampler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/energy-intelligence/pkg/models"
)

type fixedAnchor float64

func (a fixedAnchor) Last() float64 { return float64(a) }

type stubRand struct {
	uniform float64
	normal  float64
	index   int
	draws   int
}

func (r *stubRand) Float64() float64     { r.draws++; return r.uniform }
func (r *stubRand) NormFloat64() float64 { r.draws++; return r.normal }
func (r *stubRand) Intn(n int) int       { r.draws++; return r.index % n }

func TestPerturbPower_FloorsAtZero(t *testing.T) {
	tests := []struct {
		name string
		last float64
		z    float64
		want float64
	}{
		{name: "no noise", last: 1000, z: 0, want: 1000},
		{name: "one sigma up", last: 1000, z: 1, want: 1010},
		{name: "one sigma down", last: 1000, z: -1, want: 990},
		{name: "extreme negative noise", last: 1000, z: -150, want: 0},
		{name: "zero anchor", last: 0, z: -3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerturbPower(tt.last, DefaultNoiseFraction, tt.z)
			assert.InDelta(t, tt.want, float64(got), 1e-9)
			assert.GreaterOrEqual(t, float64(got), 0.0)
		})
	}
}

func TestSamplePower_NeverNegative(t *testing.T) {
	for _, last := range []float64{0, 0.5, 100, 1e6} {
		s := New(fixedAnchor(last), NewRand(DefaultSeed), Config{})
		for i := 0; i < 2000; i++ {
			assert.GreaterOrEqual(t, float64(s.SamplePower()), 0.0)
		}
	}
}

func TestSamplePower_OneDraw(t *testing.T) {
	rnd := &stubRand{normal: 2}
	s := New(fixedAnchor(500), rnd, Config{})

	got := s.SamplePower()

	assert.InDelta(t, 510.0, float64(got), 1e-9)
	assert.Equal(t, 1, rnd.draws)
}

func TestSampleVM(t *testing.T) {
	rnd := &stubRand{uniform: 0.123456, index: 3}
	s := New(fixedAnchor(0), rnd, Config{})

	vm := s.SampleVM()

	assert.Equal(t, 12.35, vm.CPUAvg)
	assert.Equal(t, 16, vm.CoreCount)
	assert.Equal(t, 2, rnd.draws)
}

func TestSampleVM_Ranges(t *testing.T) {
	s := New(fixedAnchor(0), NewRand(DefaultSeed), Config{})
	allowed := map[int]bool{}
	for _, c := range models.CoreCounts {
		allowed[c] = true
	}

	for i := 0; i < 5000; i++ {
		vm := s.SampleVM()
		assert.GreaterOrEqual(t, vm.CPUAvg, 0.0)
		assert.LessOrEqual(t, vm.CPUAvg, 100.0)
		assert.True(t, allowed[vm.CoreCount], "unexpected core count %d", vm.CoreCount)
	}
}

func TestSampler_ReproducibleForSequentialCalls(t *testing.T) {
	a := New(fixedAnchor(1000), NewRand(DefaultSeed), Config{})
	b := New(fixedAnchor(1000), NewRand(DefaultSeed), Config{})

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.SamplePower(), b.SamplePower())
		assert.Equal(t, a.SampleVM(), b.SampleVM())
	}
}

func TestSampler_ConcurrentUse(t *testing.T) {
	s := New(fixedAnchor(1000), NewRand(DefaultSeed), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.SamplePower()
				s.SampleVM()
			}
		}()
	}
	wg.Wait()
}

func TestNew_CustomCoreCounts(t *testing.T) {
	s := New(fixedAnchor(0), &stubRand{index: 1}, Config{CoreCounts: []int{1, 3}})
	assert.Equal(t, 3, s.SampleVM().CoreCount)
}
