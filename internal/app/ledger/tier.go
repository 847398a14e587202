package ledger

import "github.com/wellspring-health/wellspring/internal/domain"

// TierFor maps lifetime points onto the ordered tier table. Bands are
// inclusive on both ends, so a value exactly at a band's minimum belongs to
// that band, not the previous one.
//
// NextTierThreshold is the minimum of the next band, or the current band's
// maximum when already at the top.
func TierFor(tiers []domain.Tier, lifetimePoints int64) domain.TierInfo {
	for i, t := range tiers {
		if lifetimePoints < t.MinPoints || lifetimePoints > t.MaxPoints {
			continue
		}
		next := t.MaxPoints
		if i+1 < len(tiers) {
			next = tiers[i+1].MinPoints
		}
		return domain.TierInfo{Name: t.Name, NextTierThreshold: next}
	}

	// The table partitions [0, ∞); negative input clamps to the first band.
	first := tiers[0]
	next := first.MaxPoints
	if len(tiers) > 1 {
		next = tiers[1].MinPoints
	}
	return domain.TierInfo{Name: first.Name, NextTierThreshold: next}
}
