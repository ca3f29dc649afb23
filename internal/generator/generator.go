package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wonny/happiness/internal/contracts"
)

// Source yields uniform floats in [0,1)
type Source interface {
	Float64() float64
}

// Generator synthesizes daily sentiment windows for the refresh job
type Generator struct {
	mu  sync.Mutex
	src Source
	now func() time.Time
}

// New creates a generator backed by a time-seeded PCG source
func New() *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewWithSource(rand.New(rand.NewPCG(seed, seed>>1|1)), time.Now)
}

// NewWithSource creates a generator with an explicit source and clock
func NewWithSource(src Source, now func() time.Time) *Generator {
	return &Generator{src: src, now: now}
}

// Window builds days+1 daily snapshots, oldest first, the last one stamped now.
//
//	good    ∈ [60,75)
//	neutral ∈ [25,35)
//	bad     ∈ (10,15]
//	volume  ∈ [5000,8000)
func (g *Generator) Window(days int) ([]contracts.SentimentSnapshot, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be at least 1, got %d", days)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UTC()
	out := make([]contracts.SentimentSnapshot, 0, days+1)
	for i := days; i >= 0; i-- {
		out = append(out, contracts.SentimentSnapshot{
			Timestamp:   now.AddDate(0, 0, -i),
			Good:        60 + g.src.Float64()*15,
			Neutral:     25 + g.src.Float64()*10,
			Bad:         15 - g.src.Float64()*5,
			TotalVolume: 5000 + int64(g.src.Float64()*3000),
		})
	}
	return out, nil
}
