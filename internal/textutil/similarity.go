package textutil

import (
	"math"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Ratio scores the similarity of a and b as an integer percentage in
// [0, 100] using a case-sensitive Levenshtein ratio. Identical strings
// score 100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	score := strutil.Similarity(a, b, metrics.NewLevenshtein())
	return int(math.Round(score * 100))
}
