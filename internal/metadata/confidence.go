package metadata

import (
	"fmt"
	"strings"
)

// Confidence grades an inferred value. The four levels form a total order:
// none < low < med < high.
type Confidence string

const (
	ConfidenceNone Confidence = "none"
	ConfidenceLow  Confidence = "low"
	ConfidenceMed  Confidence = "med"
	ConfidenceHigh Confidence = "high"
)

// confidenceRank is the single ordering authority. All comparisons consult
// this table; unknown values rank below none.
var confidenceRank = map[Confidence]int{
	ConfidenceNone: 0,
	ConfidenceLow:  1,
	ConfidenceMed:  2,
	ConfidenceHigh: 3,
}

// Rank returns the integer position of the level within the scale.
// Unknown values return -1.
func (c Confidence) Rank() int {
	rank, ok := confidenceRank[c]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether c is equal to or stronger than other.
func (c Confidence) AtLeast(other Confidence) bool {
	return c.Rank() >= other.Rank()
}

// Below reports whether c is strictly weaker than other.
func (c Confidence) Below(other Confidence) bool {
	return c.Rank() < other.Rank()
}

// MaxConfidence returns the stronger of two levels.
func MaxConfidence(a, b Confidence) Confidence {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseConfidence converts a user-supplied string to a Confidence level.
func ParseConfidence(value string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := confidenceRank[c]; !ok {
		return ConfidenceNone, fmt.Errorf("invalid confidence level %q (valid: low, med, high)", value)
	}
	return c, nil
}
