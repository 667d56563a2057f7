package tree

import (
	"fmt"
	"strings"
)

// Dump renders the tree as nested If/Else rules, one node per line:
//
//	If (feature 0 <= 2.5)
//	  Predict: 0
//	Else (feature 0 > 2.5)
//	  Predict: 1
//
// classes maps class indices back to labels for the Predict lines; a nil
// or short slice falls back to the raw index. Feature references keep the
// exact form "feature <i> " so NameFeatures can rewrite them.
func (t *Tree) Dump(classes []int) string {
	if len(t.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	t.dumpNode(&sb, 0, 0, classes)
	return sb.String()
}

func (t *Tree) dumpNode(sb *strings.Builder, id, depth int, classes []int) {
	indent := strings.Repeat("  ", depth)
	n := &t.Nodes[id]
	if n.IsLeaf() {
		label := argmax(n.Distribution)
		if label < len(classes) {
			label = classes[label]
		}
		fmt.Fprintf(sb, "%sPredict: %d\n", indent, label)
		return
	}
	fmt.Fprintf(sb, "%sIf (feature %d <= %g)\n", indent, n.Feature, n.Threshold)
	t.dumpNode(sb, n.Left, depth+1, classes)
	fmt.Fprintf(sb, "%sElse (feature %d > %g)\n", indent, n.Feature, n.Threshold)
	t.dumpNode(sb, n.Right, depth+1, classes)
}

// NameFeatures rewrites the "feature <i> " references of a dump with the
// given column names, index i becoming names[i]. The trailing space in the
// reference keeps single-digit indices from matching inside longer ones.
func NameFeatures(dump string, names []string) string {
	for i, name := range names {
		dump = strings.ReplaceAll(dump, fmt.Sprintf("feature %d ", i), name+" ")
	}
	return dump
}
