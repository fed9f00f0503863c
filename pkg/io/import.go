package io

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
)

// ReadJSON decodes a JSON tree document from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed (code INVALID_FORMAT)
//   - Two nodes share an identifier, or "root", "left" or "right" name an
//     unknown identifier (code INVALID_TREE)
//   - The nodes do not form a single tree below the root (code INVALID_TREE)
//
// Time-order violations are not errors. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*lineage.Tree, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}

	handles := make(map[int]lineage.NodeID, len(data.Nodes))
	for i, n := range data.Nodes {
		if _, dup := handles[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidTree, "duplicate node id %d", n.ID)
		}
		handles[n.ID] = lineage.NodeID(i)
	}
	resolve := func(ref *int) (lineage.NodeID, error) {
		if ref == nil {
			return lineage.None, nil
		}
		h, ok := handles[*ref]
		if !ok {
			return lineage.None, fmt.Errorf("id %d: %w", *ref, lineage.ErrUnknownNode)
		}
		return h, nil
	}

	nodes := make([]lineage.Node, len(data.Nodes))
	for i, n := range data.Nodes {
		left, err := resolve(n.Left)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "node %d left", n.ID)
		}
		right, err := resolve(n.Right)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "node %d right", n.ID)
		}
		nodes[i] = lineage.Node{Time: n.Time, Left: left, Right: right, Mutations: n.Mutations}
	}

	root, ok := handles[data.Root]
	if !ok {
		root = lineage.None
	}
	t, err := lineage.FromNodes(nodes, root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "restore")
	}
	return t, nil
}

// ReadCompressedJSON decodes an LZ4-framed JSON tree document from r.
func ReadCompressedJSON(r io.Reader) (*lineage.Tree, error) {
	return ReadJSON(lz4.NewReader(r))
}

// ImportJSON reads the tree stored at path. Paths ending in ".lz4" are
// decompressed. A missing file yields an error with code FILE_NOT_FOUND.
func ImportJSON(path string) (*lineage.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	if compressed(path) {
		return ReadCompressedJSON(f)
	}
	return ReadJSON(f)
}
