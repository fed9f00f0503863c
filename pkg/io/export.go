package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
)

// WriteJSON encodes a tree as JSON and writes it to w.
// Nodes are written in arena order with their handles as identifiers.
// The output can be re-imported with [ReadJSON].
func WriteJSON(t *lineage.Tree, w io.Writer) error {
	if t.Root() == lineage.None {
		return errors.New(errors.ErrCodeInvalidTree, "tree has no root")
	}

	nodes := t.Nodes()
	out := document{
		Root:  int(t.Root()),
		Nodes: make([]node, len(nodes)),
	}
	for i, n := range nodes {
		nd := node{ID: i, Time: n.Time}
		if n.Left != lineage.None {
			left := int(n.Left)
			nd.Left = &left
		}
		if n.Right != lineage.None {
			right := int(n.Right)
			nd.Right = &right
		}
		if n.Mutations.Len() > 0 {
			nd.Mutations = n.Mutations
		}
		out.Nodes[i] = nd
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteCompressedJSON is [WriteJSON] wrapped in an LZ4 frame.
func WriteCompressedJSON(t *lineage.Tree, w io.Writer) error {
	zw := lz4.NewWriter(w)
	if err := WriteJSON(t, zw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	return nil
}

// ExportJSON writes a tree to a file at path. Paths ending in ".lz4" are
// compressed.
func ExportJSON(t *lineage.Tree, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if compressed(path) {
		return WriteCompressedJSON(t, f)
	}
	return WriteJSON(t, f)
}
