package brain

import (
	"math"
	"time"
)

// Tier buckets an agent by distance to the nearest player; the bucket decides
// how often the brain asks for updates.
type Tier int

const (
	TierNear Tier = iota
	TierMidRange
	TierFar
	TierOutOfRange
)

func (t Tier) String() string {
	switch t {
	case TierNear:
		return "near"
	case TierMidRange:
		return "mid-range"
	case TierFar:
		return "far"
	default:
		return "out-of-range"
	}
}

type TierSettings struct {
	NearMaxDistance float64
	MidMaxDistance  float64
	FarMaxDistance  float64

	NearInterval       time.Duration
	MidInterval        time.Duration
	FarInterval        time.Duration
	OutOfRangeInterval time.Duration

	UpdateOnPerceptionChanges bool
}

func DefaultTierSettings() TierSettings {
	return TierSettings{
		NearMaxDistance:    1500,
		MidMaxDistance:     3000,
		FarMaxDistance:     6000,
		NearInterval:       time.Second,
		MidInterval:        2 * time.Second,
		FarInterval:        5 * time.Second,
		OutOfRangeInterval: 10 * time.Second,
	}
}

// updateTier recomputes the proximity tier and, when the update interval
// changes, re-arms the timer with a random initial delay so agents that
// transition together don't update in lockstep.
func (b *Brain) updateTier() {
	distSq := b.minPlayerDistSq()

	var tier Tier
	var interval time.Duration
	switch {
	case distSq <= b.tiers.NearMaxDistance*b.tiers.NearMaxDistance:
		tier, interval = TierNear, b.tiers.NearInterval
	case distSq <= b.tiers.MidMaxDistance*b.tiers.MidMaxDistance:
		tier, interval = TierMidRange, b.tiers.MidInterval
	case distSq <= b.tiers.FarMaxDistance*b.tiers.FarMaxDistance:
		tier, interval = TierFar, b.tiers.FarInterval
	default:
		tier, interval = TierOutOfRange, b.tiers.OutOfRangeInterval
	}

	b.tier = tier
	if interval != b.updateInterval || b.updateInterval == 0 {
		b.updateInterval = interval
		b.timerRemaining = time.Duration(b.rng.Float64() * float64(interval))
	}
}

// minPlayerDistSq is the minimum squared distance to any player. With no
// locator configured every agent counts as near: a headless simulation has no
// observers to tier against.
func (b *Brain) minPlayerDistSq() float64 {
	if b.players == nil {
		return 0
	}
	positions := b.players.PlayerPositions()
	if len(positions) == 0 {
		return math.MaxFloat64
	}
	self := b.self.Position()
	min := math.MaxFloat64
	for _, p := range positions {
		if d := self.DistSq(p); d < min {
			min = d
		}
	}
	return min
}
