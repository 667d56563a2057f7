package tree

import (
	"math/rand/v2"
	"sort"

	credigoErrors "github.com/credigo/credigo/pkg/errors"
)

// minGainToSplit is the smallest impurity decrease worth splitting on.
const minGainToSplit = 1e-7

// Node is one node of an arena-allocated tree. Children are referenced by
// their index in the arena; -1 marks a leaf. Rows with feature value
// <= Threshold descend left.
type Node struct {
	Feature      int       // split feature index, -1 for leaves
	Threshold    float64   // split threshold
	Left         int       // left child node ID, -1 for leaves
	Right        int       // right child node ID, -1 for leaves
	Impurity     float64   // impurity under the training criterion
	Samples      int       // training samples reaching the node
	Distribution []float64 // per-class probability, sums to 1
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Feature < 0 }

// Tree is an explicit decision tree: a node arena with node 0 as the root.
// Trees are read-only once grown.
type Tree struct {
	Nodes     []Node
	NFeatures int
	NClasses  int
}

// BuildConfig configures a single tree build.
type BuildConfig struct {
	Criterion       Criterion  // nil defaults to Gini
	MaxDepth        int        // deepest allowed node depth; -1 = unlimited
	MinSamplesSplit int        // smallest node that may split
	MinSamplesLeaf  int        // smallest allowed child
	MaxFeatures     int        // features considered per split; 0 = all
	MaxBins         int        // candidate thresholds per feature; 0 = all
	RNG             *rand.Rand // feature-subset stream; nil disables subsampling
}

// Grow builds a classification tree over the rows of X listed in samples.
// Duplicate indices are allowed, which is how bootstrap draws arrive.
// y holds class indices in [0, nClasses).
//
// The RNG, when feature subsampling is active, is consumed in a fixed order:
// one partial shuffle of MaxFeatures draws per split attempt, visiting nodes
// depth-first with left subtrees before right. Equal inputs and an equally
// seeded stream grow identical trees.
func Grow(X [][]float64, y []int, nClasses int, samples []int, cfg BuildConfig) (*Tree, error) {
	if len(samples) == 0 {
		return nil, credigoErrors.Wrap(credigoErrors.ErrEmptyData, "tree.Grow")
	}
	if len(y) != len(X) {
		return nil, credigoErrors.NewDimensionError("tree.Grow", len(X), len(y), 0)
	}
	if nClasses < 1 {
		return nil, credigoErrors.NewValueError("tree.Grow", "need at least one class")
	}
	for _, s := range samples {
		if s < 0 || s >= len(X) {
			return nil, credigoErrors.NewValueError("tree.Grow", "sample index out of range")
		}
		if y[s] < 0 || y[s] >= nClasses {
			return nil, credigoErrors.NewValueError("tree.Grow", "class index out of range")
		}
	}

	nFeatures := len(X[0])
	crit := cfg.Criterion
	if crit == nil {
		crit = Gini{}
	}
	minSplit := cfg.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	minLeaf := cfg.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}

	b := &treeBuilder{
		X:         X,
		y:         y,
		crit:      crit,
		maxDepth:  cfg.MaxDepth,
		minSplit:  minSplit,
		minLeaf:   minLeaf,
		maxFeats:  cfg.MaxFeatures,
		maxBins:   cfg.MaxBins,
		rng:       cfg.RNG,
		nFeatures: nFeatures,
		nClasses:  nClasses,
		tree: &Tree{
			NFeatures: nFeatures,
			NClasses:  nClasses,
		},
	}
	b.grow(samples, 0)
	return b.tree, nil
}

// PredictProba returns the class distribution of the leaf the row descends
// to. The returned slice is shared with the tree and must not be modified.
func (t *Tree) PredictProba(row []float64) []float64 {
	id := 0
	for !t.Nodes[id].IsLeaf() {
		n := &t.Nodes[id]
		if row[n.Feature] <= n.Threshold {
			id = n.Left
		} else {
			id = n.Right
		}
	}
	return t.Nodes[id].Distribution
}

// Depth returns the depth of the deepest node, with the root at depth 0.
func (t *Tree) Depth() int {
	type frame struct{ id, depth int }
	max := 0
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > max {
			max = f.depth
		}
		n := &t.Nodes[f.id]
		if !n.IsLeaf() {
			stack = append(stack, frame{n.Left, f.depth + 1}, frame{n.Right, f.depth + 1})
		}
	}
	return max
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	leaves := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			leaves++
		}
	}
	return leaves
}

// ImportanceSums returns the unnormalized feature importances: for each
// feature, the total impurity decrease of its splits, each weighted by the
// fraction of root samples reaching the split. Everything needed is stored
// in the arena, so this is a pure read.
func (t *Tree) ImportanceSums() []float64 {
	imp := make([]float64, t.NFeatures)
	if len(t.Nodes) == 0 {
		return imp
	}
	rootSamples := float64(t.Nodes[0].Samples)
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			continue
		}
		left, right := &t.Nodes[n.Left], &t.Nodes[n.Right]
		total := float64(n.Samples)
		childImp := (float64(left.Samples)*left.Impurity + float64(right.Samples)*right.Impurity) / total
		imp[n.Feature] += total / rootSamples * (n.Impurity - childImp)
	}
	return imp
}

type treeBuilder struct {
	X         [][]float64
	y         []int
	crit      Criterion
	maxDepth  int
	minSplit  int
	minLeaf   int
	maxFeats  int
	maxBins   int
	rng       *rand.Rand
	nFeatures int
	nClasses  int
	tree      *Tree
}

// grow recursively builds the subtree for samples and returns its node ID.
func (b *treeBuilder) grow(samples []int, depth int) int {
	counts := make([]float64, b.nClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	total := float64(len(samples))
	impurity := b.crit.Impurity(counts, total)

	dist := make([]float64, b.nClasses)
	for c := range counts {
		dist[c] = counts[c] / total
	}

	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Feature:      -1,
		Left:         -1,
		Right:        -1,
		Impurity:     impurity,
		Samples:      len(samples),
		Distribution: dist,
	})

	if impurity <= 0 ||
		len(samples) < b.minSplit ||
		(b.maxDepth >= 0 && depth >= b.maxDepth) {
		return id
	}

	feat, thr, ok := b.bestSplit(samples, impurity, counts)
	if !ok {
		return id
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if b.X[s][feat] <= thr {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	// Children are appended after this node, so set the split fields first
	// and the child IDs once the recursion returns; the arena may have been
	// reallocated in between.
	b.tree.Nodes[id].Feature = feat
	b.tree.Nodes[id].Threshold = thr
	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)
	b.tree.Nodes[id].Left = leftID
	b.tree.Nodes[id].Right = rightID
	return id
}

// featureSubset picks the features to consider at one split attempt. With
// subsampling active it consumes exactly maxFeats draws from the stream and
// returns the chosen indices in ascending order.
func (b *treeBuilder) featureSubset() []int {
	if b.rng == nil || b.maxFeats <= 0 || b.maxFeats >= b.nFeatures {
		all := make([]int, b.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}

	perm := make([]int, b.nFeatures)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < b.maxFeats; i++ {
		j := i + b.rng.IntN(b.nFeatures-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	chosen := perm[:b.maxFeats]
	sort.Ints(chosen)
	return chosen
}

// valClass is one sample projected onto a single feature.
type valClass struct {
	v float64
	c int
}

// bestSplit searches the feature subset for the split with the largest
// impurity decrease. Candidates and features are visited in ascending
// order and ties keep the first candidate, so the search is deterministic.
func (b *treeBuilder) bestSplit(samples []int, nodeImpurity float64, counts []float64) (int, float64, bool) {
	n := len(samples)
	total := float64(n)

	bestGain := 0.0
	bestFeat := -1
	bestThr := 0.0

	vals := make([]valClass, n)
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	for _, feat := range b.featureSubset() {
		for i, s := range samples {
			vals[i] = valClass{v: b.X[s][feat], c: b.y[s]}
		}
		sort.Slice(vals, func(i, j int) bool { return vals[i].v < vals[j].v })

		// Positions after which the value changes; a split can only be
		// placed between two distinct values.
		var boundaries []int
		for p := 0; p < n-1; p++ {
			if vals[p].v != vals[p+1].v {
				boundaries = append(boundaries, p)
			}
		}
		if len(boundaries) == 0 {
			continue
		}
		chosen := candidateBoundaries(boundaries, b.maxBins)

		for c := range left {
			left[c] = 0
		}
		ci := 0
		for p := 0; p < n-1 && ci < len(chosen); p++ {
			left[vals[p].c]++
			if p != chosen[ci] {
				continue
			}
			ci++

			nL := p + 1
			nR := n - nL
			if nL < b.minLeaf || nR < b.minLeaf {
				continue
			}
			for c := range right {
				right[c] = counts[c] - left[c]
			}
			weighted := (float64(nL)*b.crit.Impurity(left, float64(nL)) +
				float64(nR)*b.crit.Impurity(right, float64(nR))) / total
			gain := nodeImpurity - weighted
			if gain >= minGainToSplit && gain > bestGain {
				bestGain = gain
				bestFeat = feat
				bestThr = (vals[p].v + vals[p+1].v) / 2
			}
		}
	}

	return bestFeat, bestThr, bestFeat >= 0
}

// candidateBoundaries caps the split positions for one feature at maxBins-1,
// picking them at equal-frequency strides over the distinct-value
// boundaries. maxBins <= 0 keeps every boundary.
func candidateBoundaries(boundaries []int, maxBins int) []int {
	if maxBins <= 0 || len(boundaries) < maxBins {
		return boundaries
	}
	out := make([]int, 0, maxBins-1)
	prev := -1
	for i := 1; i < maxBins; i++ {
		idx := (len(boundaries) - 1) * i / maxBins
		if idx != prev {
			out = append(out, boundaries[idx])
			prev = idx
		}
	}
	return out
}
