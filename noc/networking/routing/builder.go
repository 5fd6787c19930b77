package routing

import (
	"fmt"
	"math/rand/v2"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Builder can build routing units.
type Builder struct {
	params    Params
	algorithm Algorithm
	rng       *rand.Rand
	metrics   *Metrics
	cacheSize int
}

// MakeBuilder creates a Builder with default settings.
func MakeBuilder() Builder {
	return Builder{}
}

// WithParams sets the network-wide parameters.
func (b Builder) WithParams(p Params) Builder {
	b.params = p
	return b
}

// WithAlgorithm sets the algorithm used for packets that are not at their
// destination router. The table lookup and custom modes have defaults; other
// modes require an algorithm.
func (b Builder) WithAlgorithm(a Algorithm) Builder {
	b.algorithm = a
	return b
}

// WithRand sets the generator that breaks ties on unordered vnets. Without
// it, the unit seeds its own generator from the Params seed and router id.
func (b Builder) WithRand(rng *rand.Rand) Builder {
	b.rng = rng
	return b
}

// WithMetrics sets the counters the unit reports to.
func (b Builder) WithMetrics(m *Metrics) Builder {
	b.metrics = m
	return b
}

// WithCandidateCacheSize enables caching of table candidates for keyed
// destination sets.
func (b Builder) WithCandidateCacheSize(n int) Builder {
	b.cacheSize = n
	return b
}

// Build creates a routing unit for the router with the given id.
func (b Builder) Build(name string, id int) *Unit {
	b.paramsMustBeValid()
	b.algorithmMustMatchMode()

	u := &Unit{
		name:      name,
		id:        id,
		params:    b.params,
		algorithm: b.algorithm,
		table:     NewTable(),
		dirs:      NewPortDirectory(),
		metrics:   b.metrics,
		rng:       b.rng,
	}

	if u.algorithm == nil {
		u.algorithm = defaultAlgorithm(b.params.Mode)
	}

	if u.rng == nil {
		u.rng = rand.New(rand.NewPCG(b.params.Seed, uint64(id)))
	}

	if b.cacheSize > 0 {
		cache, err := lru.New[candidateKey, []int](b.cacheSize)
		if err != nil {
			panic(err)
		}

		u.cache = cache
	}

	return u
}

func (b Builder) paramsMustBeValid() {
	if err := b.params.Validate(); err != nil {
		panic(err)
	}
}

func (b Builder) algorithmMustMatchMode() {
	if b.algorithm == nil {
		if defaultAlgorithm(b.params.Mode) == nil {
			panic(fmt.Sprintf(
				"routing mode %s requires an algorithm", b.params.Mode))
		}

		return
	}

	if b.algorithm.Mode() != b.params.Mode {
		panic(fmt.Sprintf("algorithm mode %s does not match routing mode %s",
			b.algorithm.Mode(), b.params.Mode))
	}
}

func defaultAlgorithm(mode Mode) Algorithm {
	switch mode {
	case TableLookup:
		return TableLookupAlgorithm{}
	case Custom:
		return CustomAlgorithm{}
	default:
		return nil
	}
}
