package tree

import (
	"math"
	"testing"
)

// TestCriterionImpurity checks the impurity values on hand-computed counts
func TestCriterionImpurity(t *testing.T) {
	tests := []struct {
		name      string
		criterion Criterion
		counts    []float64
		want      float64
	}{
		{"gini pure", Gini{}, []float64{4, 0}, 0},
		{"gini even", Gini{}, []float64{2, 2}, 0.5},
		{"gini skewed", Gini{}, []float64{3, 1}, 0.375},
		{"gini three classes", Gini{}, []float64{2, 2, 2}, 2.0 / 3.0},
		{"entropy pure", Entropy{}, []float64{5, 0}, 0},
		{"entropy even", Entropy{}, []float64{2, 2}, 1},
		{"entropy skewed", Entropy{}, []float64{3, 1}, 0.8112781244591328},
		{"variance pure", Variance{}, []float64{4, 0}, 0},
		{"variance even", Variance{}, []float64{2, 2}, 0.25},
		{"variance skewed", Variance{}, []float64{3, 1}, 0.1875},
		{"variance spread classes", Variance{}, []float64{1, 0, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0.0
			for _, c := range tt.counts {
				total += c
			}
			got := tt.criterion.Impurity(tt.counts, total)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s impurity of %v = %v, want %v", tt.criterion.Name(), tt.counts, got, tt.want)
			}
		})
	}
}

// TestCriterionImpurity_EmptyNode checks that empty nodes are not NaN
func TestCriterionImpurity_EmptyNode(t *testing.T) {
	for _, c := range []Criterion{Gini{}, Entropy{}, Variance{}} {
		if got := c.Impurity([]float64{0, 0}, 0); got != 0 {
			t.Errorf("%s impurity of empty node = %v, want 0", c.Name(), got)
		}
	}
}

// TestCriterionByName checks parameter-string resolution
func TestCriterionByName(t *testing.T) {
	for _, name := range []string{"gini", "entropy", "variance"} {
		c, err := CriterionByName(name)
		if err != nil {
			t.Fatalf("CriterionByName(%q) failed: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("CriterionByName(%q).Name() = %q", name, c.Name())
		}
	}

	if _, err := CriterionByName("squared_error"); err == nil {
		t.Error("Expected error for unknown criterion name")
	}
}
