package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/coalsim/pkg/lineage"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds mutation indices to node labels and branch lengths to
	// edges. When false, only sample names and coalescence times are shown.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT format. Nodes not reachable from the
// root are omitted. The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(t *lineage.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	w := dotWriter{t: t, opts: opts, buf: &buf}
	if root := t.Root(); root != lineage.None {
		w.node(root)
		buf.WriteString("\n")
		w.edges(root)
		if len(w.leaves) > 1 {
			fmt.Fprintf(&buf, "\n  { rank=same; %s; }\n", strings.Join(w.leaves, "; "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	t      *lineage.Tree
	opts   Options
	buf    *bytes.Buffer
	leaves []string
}

func (w *dotWriter) node(id lineage.NodeID) {
	n, ok := w.t.Node(id)
	if !ok {
		return
	}

	var label string
	attrs := []string{}
	if n.IsLeaf() {
		w.leaves = append(w.leaves, nodeName(id))
		label = "s" + strconv.Itoa(len(w.leaves))
		attrs = append(attrs, "fillcolor=lightgrey")
	} else {
		label = fmtTime(n.Time)
	}
	if w.opts.Detailed && n.Mutations.Len() > 0 {
		label += "\n" + fmtMutations(n.Mutations)
	}
	attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
	fmt.Fprintf(w.buf, "  %s [%s];\n", nodeName(id), strings.Join(attrs, ", "))

	if n.Left != lineage.None {
		w.node(n.Left)
	}
	if n.Right != lineage.None {
		w.node(n.Right)
	}
}

func (w *dotWriter) edges(id lineage.NodeID) {
	n, ok := w.t.Node(id)
	if !ok {
		return
	}
	for _, c := range [2]lineage.NodeID{n.Left, n.Right} {
		if c == lineage.None {
			continue
		}
		if w.opts.Detailed {
			fmt.Fprintf(w.buf, "  %s -> %s [label=%q];\n", nodeName(id), nodeName(c), fmtTime(n.Time-w.t.Time(c)))
		} else {
			fmt.Fprintf(w.buf, "  %s -> %s;\n", nodeName(id), nodeName(c))
		}
		w.edges(c)
	}
}

func nodeName(id lineage.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

func fmtTime(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func fmtMutations(m lineage.MutationSet) string {
	idx := m.Sorted()
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "m: " + strings.Join(parts, ",")
}
