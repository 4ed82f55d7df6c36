package expr

import (
	"math/rand/v2"
	"sync"

	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

// Source draws uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// RNG is a Source safe for concurrent use.
type RNG struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRNG returns a deterministic RNG for the given seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 implements Source.
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// AddUniformJitter returns value + U[-jitter, +jitter] drawn from src.
// A nil src uses the process-wide generator.
func AddUniformJitter(src Source, value, jitter any) (float64, error) {
	v, err := toNumber("value", value)
	if err != nil {
		return 0, err
	}
	j, err := toNumber("jitter", jitter)
	if err != nil {
		return 0, err
	}
	if j < 0 {
		return 0, cerrors.Errorf(cerrors.KindValue, "jitter must not be negative, got %v", j)
	}
	if src == nil {
		src = globalSource{}
	}
	return v + j*(src.Float64()*2-1), nil
}

// RelativeJitter returns the jitter amplitude p * reference.
func RelativeJitter(p, reference any) (float64, error) {
	pf, err := toNumber("p", p)
	if err != nil {
		return 0, err
	}
	ref, err := toNumber("reference", reference)
	if err != nil {
		return 0, err
	}
	j := pf * ref
	if j < 0 {
		j = -j
	}
	return j, nil
}
