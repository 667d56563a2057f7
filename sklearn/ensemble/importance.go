package ensemble

import (
	"fmt"
	"sort"
	"strings"

	credigoErrors "github.com/credigo/credigo/pkg/errors"
)

// FeatureImportance pairs a feature name with its normalized importance score.
type FeatureImportance struct {
	Name  string
	Score float64
}

// ImportanceTable zips feature names with importance scores in their shared
// canonical column order. The two slices must have the same length; scores
// usually come straight from GetFeatureImportances.
func ImportanceTable(names []string, scores []float64) ([]FeatureImportance, error) {
	if len(names) != len(scores) {
		return nil, credigoErrors.NewDimensionError("ensemble.ImportanceTable", len(names), len(scores), 0)
	}

	table := make([]FeatureImportance, len(names))
	for i, name := range names {
		table[i] = FeatureImportance{Name: name, Score: scores[i]}
	}
	return table, nil
}

// SortByScore returns a copy of the table ordered by descending score.
// Equal scores keep their canonical column order.
func SortByScore(table []FeatureImportance) []FeatureImportance {
	sorted := make([]FeatureImportance, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// FormatImportances renders the table one feature per line, aligned for logs
// and report output.
func FormatImportances(table []FeatureImportance) string {
	width := 0
	for _, fi := range table {
		if len(fi.Name) > width {
			width = len(fi.Name)
		}
	}

	var sb strings.Builder
	for _, fi := range table {
		fmt.Fprintf(&sb, "%-*s %.4f\n", width, fi.Name, fi.Score)
	}
	return sb.String()
}
