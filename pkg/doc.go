// Package pkg provides the core libraries for coalsim, a coalescent genealogy
// simulator.
//
// # Overview
//
// Coalsim simulates the ancestry of a sample of n individuals backwards in
// time under Kingman's coalescent and measures the resulting genealogy. The
// pkg directory is organized into three areas:
//
//  1. Model: [lineage] (the genealogy arena), [coalescent] (the simulator),
//     [treestats] and [sfs] (statistics)
//  2. Infrastructure: [io] (tree files), [render] (DOT/SVG), [cache],
//     [config], [observability], [errors]
//  3. Orchestration: [pipeline] (simulate, load, batch, render)
//
// # Architecture
//
// The typical data flow through coalsim:
//
//	Config (n, t0, theta, seed)
//	         ↓
//	    [coalescent] package (coalescence and mutation events)
//	         ↓
//	    [lineage] tree (root = MRCA)
//	         ↓
//	    [treestats] / [sfs] (T_MRCA, branch length, T_ij, spectrum)
//	         ↓
//	    text, JSON tree file, DOT/SVG/PNG/PDF
//
// # Quick Start
//
// Simulate a genealogy and measure it:
//
//	import (
//	    "github.com/matzehuels/coalsim/pkg/coalescent"
//	    "github.com/matzehuels/coalsim/pkg/sfs"
//	    "github.com/matzehuels/coalsim/pkg/treestats"
//	)
//
//	theta := 5.0
//	engine := coalescent.New(coalescent.NewSource(42))
//	sim, err := engine.Simulate(coalescent.Config{N: 20, Theta: &theta})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(treestats.MRCA(sim.Tree))
//	vectors := sfs.BinaryVectors(sfs.LeafSequences(sim.Tree), sim.Mutations)
//	fmt.Println(sfs.Fold(vectors))
//
// For caching, batches and rendering, use [pipeline.Runner].
//
// [lineage]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/lineage
// [coalescent]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/coalescent
// [treestats]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/treestats
// [sfs]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/sfs
// [io]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/coalsim/pkg/pipeline#Runner
package pkg
