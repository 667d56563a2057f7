package tree

import (
	"strings"
	"testing"
)

func stumpTree() *Tree {
	return &Tree{
		NFeatures: 2,
		NClasses:  2,
		Nodes: []Node{
			{Feature: 0, Threshold: 2.5, Left: 1, Right: 2, Impurity: 0.5, Samples: 4, Distribution: []float64{0.5, 0.5}},
			{Feature: -1, Left: -1, Right: -1, Samples: 2, Distribution: []float64{1, 0}},
			{Feature: -1, Left: -1, Right: -1, Samples: 2, Distribution: []float64{0, 1}},
		},
	}
}

// TestTreeDump checks the If/Else rendering of a single split
func TestTreeDump(t *testing.T) {
	dump := stumpTree().Dump(nil)

	want := "If (feature 0 <= 2.5)\n" +
		"  Predict: 0\n" +
		"Else (feature 0 > 2.5)\n" +
		"  Predict: 1\n"
	if dump != want {
		t.Errorf("Dump mismatch:\ngot:\n%s\nwant:\n%s", dump, want)
	}
}

// TestTreeDump_ClassLabels checks that leaves print mapped labels
func TestTreeDump_ClassLabels(t *testing.T) {
	dump := stumpTree().Dump([]int{3, 7})

	if !strings.Contains(dump, "Predict: 3\n") || !strings.Contains(dump, "Predict: 7\n") {
		t.Errorf("Dump should print mapped class labels:\n%s", dump)
	}
}

// TestTreeDump_Nested checks indentation over two levels
func TestTreeDump_Nested(t *testing.T) {
	tr := &Tree{
		NFeatures: 2,
		NClasses:  2,
		Nodes: []Node{
			{Feature: 1, Threshold: 0.5, Left: 1, Right: 4, Impurity: 0.5, Samples: 6, Distribution: []float64{0.5, 0.5}},
			{Feature: 0, Threshold: 1, Left: 2, Right: 3, Impurity: 0.5, Samples: 4, Distribution: []float64{0.5, 0.5}},
			{Feature: -1, Left: -1, Right: -1, Samples: 2, Distribution: []float64{1, 0}},
			{Feature: -1, Left: -1, Right: -1, Samples: 2, Distribution: []float64{0, 1}},
			{Feature: -1, Left: -1, Right: -1, Samples: 2, Distribution: []float64{0, 1}},
		},
	}

	want := "If (feature 1 <= 0.5)\n" +
		"  If (feature 0 <= 1)\n" +
		"    Predict: 0\n" +
		"  Else (feature 0 > 1)\n" +
		"    Predict: 1\n" +
		"Else (feature 1 > 0.5)\n" +
		"  Predict: 1\n"
	if got := tr.Dump(nil); got != want {
		t.Errorf("Dump mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestNameFeatures checks index-to-name substitution, including the
// single-digit versus double-digit case
func TestNameFeatures(t *testing.T) {
	dump := "If (feature 1 <= 3)\n" +
		"  If (feature 10 <= 2)\n" +
		"    Predict: 0\n" +
		"  Else (feature 10 > 2)\n" +
		"    Predict: 1\n" +
		"Else (feature 1 > 3)\n" +
		"  Predict: 1\n"

	names := make([]string, 11)
	names[1] = "duration"
	names[10] = "assets"
	for i, n := range names {
		if n == "" {
			names[i] = "other"
		}
	}

	named := NameFeatures(dump, names)

	if !strings.Contains(named, "duration <= 3") {
		t.Errorf("feature 1 should become duration:\n%s", named)
	}
	if !strings.Contains(named, "assets <= 2") || !strings.Contains(named, "assets > 2") {
		t.Errorf("feature 10 should become assets:\n%s", named)
	}
	if strings.Contains(named, "feature") {
		t.Errorf("All feature references should be rewritten:\n%s", named)
	}
}
