// Package render draws simulated genealogies as node-link diagrams.
//
// # Overview
//
// [ToDOT] converts a [lineage.Tree] to Graphviz DOT with the root at the top
// and the sampled individuals along the bottom. [RenderSVG] lays the DOT out
// with the embedded Graphviz engine from go-graphviz, so no system Graphviz
// installation is needed:
//
//	dot := render.ToDOT(tree, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Labels
//
// Leaves are labelled s1..sn from left to right. Internal nodes show the time
// at which their children coalesced. With [Options.Detailed], nodes also list
// the mutation indices that struck them and edges carry their branch length.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG to other formats using the external
// rsvg-convert tool (from librsvg).
package render
