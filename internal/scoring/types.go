// Package scoring computes uncertainty scores for generation positions from
// candidate-token probability distributions and classifies critical decision
// points by Shannon entropy.
package scoring

// TokenCandidate is one alternative token at a generation position together
// with the probability the model assigned to it. A position's candidates are
// ordered by descending probability and sum to at most 1; the remaining mass
// is implicitly "other tokens" and is never imputed.
type TokenCandidate struct {
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
}

// DecisionPoint is a generation position whose candidate distribution was
// uncertain enough to warrant highlighting. Immutable once produced.
type DecisionPoint struct {
	// Position is the zero-based offset of the position in the completion.
	Position int `json:"position"`

	// Entropy is the Shannon entropy over the supplied candidate mass, in bits.
	Entropy float64 `json:"entropy"`

	// Candidates is the position's candidate list, descending by probability.
	Candidates []TokenCandidate `json:"candidates"`
}

// DefaultThreshold is the entropy threshold (in bits) above which a position
// is flagged when the caller does not configure one.
const DefaultThreshold = 0.5
