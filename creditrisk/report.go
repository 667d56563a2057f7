package creditrisk

import (
	"fmt"
	"strings"

	"github.com/credigo/credigo/dataset"
	"github.com/credigo/credigo/sklearn/ensemble"
)

// Report collects every artifact the workflow produces, in the order the
// analysis presents them. String renders the whole report for printing.
type Report struct {
	NumRows   int
	TrainRows int
	TestRows  int

	// Exploration tables.
	Summaries      []dataset.Summary
	AmountByLabel  []dataset.GroupMean
	BalanceByLabel *dataset.CrossTable

	// Held-out evaluation.
	AUC      float64
	Accuracy float64
	Brier    float64

	// Importances holds one entry per feature in FeatureColumns order.
	Importances []ensemble.FeatureImportance

	// TreeDump is the first tree of the forest with feature names
	// substituted for column indices.
	TreeDump string

	// PlotPaths lists the PNG files written when Config.PlotDir was set.
	PlotPaths []string
}

// String renders the report as the analysis printout: row counts, summary
// statistics, the group means, the balance cross-table, the evaluation
// metrics, the sorted importances, and the first tree.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "rows: %d (train %d, test %d)\n\n", r.NumRows, r.TrainRows, r.TestRows)

	if len(r.Summaries) > 0 {
		fmt.Fprintf(&b, "%-10s %7s %11s %11s %9s %9s\n",
			"column", "count", "mean", "stddev", "min", "max")
		for _, s := range r.Summaries {
			fmt.Fprintf(&b, "%-10s %7d %11.2f %11.2f %9.0f %9.0f\n",
				s.Column, s.Count, s.Mean, s.StdDev, s.Min, s.Max)
		}
		b.WriteByte('\n')
	}

	if len(r.AmountByLabel) > 0 {
		fmt.Fprintf(&b, "mean amount by %s:\n", LabelColumn)
		for _, g := range r.AmountByLabel {
			fmt.Fprintf(&b, "  %s %d: %.2f\n", LabelColumn, g.Key, g.Mean)
		}
		b.WriteByte('\n')
	}

	if r.BalanceByLabel != nil {
		b.WriteString(r.BalanceByLabel.String())
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "auc %.4f  accuracy %.4f  brier %.4f\n\n", r.AUC, r.Accuracy, r.Brier)

	if len(r.Importances) > 0 {
		b.WriteString("feature importance:\n")
		b.WriteString(ensemble.FormatImportances(ensemble.SortByScore(r.Importances)))
		b.WriteByte('\n')
	}

	if r.TreeDump != "" {
		b.WriteString("first tree:\n")
		b.WriteString(r.TreeDump)
	}

	return b.String()
}
