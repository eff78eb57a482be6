package pipeline

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const minSimilarity = 0.5

// suggest ближайший по Левенштейну вариант или пустая строка
func suggest(value string, options []string) string {
	if value == "" {
		return ""
	}
	metric := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, o := range options {
		score := strutil.Similarity(strings.ToLower(value), strings.ToLower(o), metric)
		if score > bestScore {
			best, bestScore = o, score
		}
	}
	if bestScore < minSimilarity {
		return ""
	}
	return best
}
