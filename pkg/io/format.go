package io

import (
	"strings"

	"github.com/matzehuels/coalsim/pkg/lineage"
)

// Extension that selects LZ4 framing in [ExportJSON] and [ImportJSON].
const ExtLZ4 = ".lz4"

type document struct {
	Root  int    `json:"root"`
	Nodes []node `json:"nodes"`
}

type node struct {
	ID        int                 `json:"id"`
	Time      float64             `json:"time"`
	Left      *int                `json:"left,omitempty"`
	Right     *int                `json:"right,omitempty"`
	Mutations lineage.MutationSet `json:"mutations,omitempty"`
}

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ExtLZ4)
}
