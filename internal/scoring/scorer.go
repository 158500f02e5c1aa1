package scoring

import (
	"math"
	"sort"
)

// Scorer classifies generation positions as critical decision points.
// A Scorer is stateless and safe for concurrent use.
type Scorer struct {
	// Threshold is the entropy (in bits) a position must exceed to be flagged.
	Threshold float64
}

// NewScorer creates a scorer with the given entropy threshold.
func NewScorer(threshold float64) *Scorer {
	return &Scorer{Threshold: threshold}
}

// Score computes per-position entropy over the supplied candidate lists and
// returns a DecisionPoint for every position whose entropy exceeds the
// threshold. Positions are returned in input order (stable on entropy ties).
//
// A single-candidate position carries zero entropy by definition and is never
// flagged. A position with degenerate probability data (zero, negative, NaN,
// or >1) produces no DecisionPoint; bad data fails that position's scoring,
// never the whole call. failed counts such positions so callers can mark the
// overall result partial.
func (s *Scorer) Score(positions [][]TokenCandidate) (points []DecisionPoint, failed int) {
	for i, cands := range positions {
		if len(cands) < 2 {
			continue
		}

		entropy, ok := Entropy(cands)
		if !ok {
			failed++
			continue
		}

		if entropy > s.Threshold {
			points = append(points, DecisionPoint{
				Position:   i,
				Entropy:    entropy,
				Candidates: normalizeOrder(cands),
			})
		}
	}

	return points, failed
}

// Entropy computes the Shannon entropy (-Σ p·log2(p), in bits) over the
// candidate probability mass that was actually supplied. Mass not covered by
// the candidate list is not imputed; the value is therefore a documented
// approximation of the full distribution's entropy.
//
// Returns ok=false when any candidate probability is degenerate: zero,
// negative, NaN, or above 1.
func Entropy(cands []TokenCandidate) (float64, bool) {
	if len(cands) == 0 {
		return 0, false
	}

	var entropy float64
	for _, c := range cands {
		p := c.Probability
		if math.IsNaN(p) || p <= 0 || p > 1 {
			return 0, false
		}
		entropy -= p * math.Log2(p)
	}

	// Float rounding can push -Σ p·log2(p) fractionally below zero.
	if entropy < 0 {
		entropy = 0
	}

	return entropy, true
}

// normalizeOrder returns the candidates sorted by descending probability.
// Upstream producers are supposed to send them that way already; the invariant
// is enforced here rather than trusted (ties keep input order).
func normalizeOrder(cands []TokenCandidate) []TokenCandidate {
	out := make([]TokenCandidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}
