// Package hierarchy turns a flat list of object keys into a folder/file tree.
//
// The tree is derived, never stored: Build is a pure function of its input.
// Keys are processed in lexicographic order and the first key to touch a
// path segment fixes whether that segment is a file or a folder. Keys that
// disagree with an earlier decision are left out of the tree and reported
// in Result.Conflicts.
package hierarchy

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/stashdrive/service/internal/storage"
)

// Kind tags a node as a file or a folder.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is one entry of the tree. Files carry the object's metadata; folders
// carry their children keyed by segment name.
type Node struct {
	Kind     Kind
	Metadata storage.Object
	Children map[string]*Node
}

// Result is the outcome of Build.
type Result struct {
	Root *Node
	// Conflicts lists keys skipped because an earlier key fixed one of their
	// segments as the other kind.
	Conflicts []string
}

func newFolder() *Node {
	return &Node{Kind: KindFolder, Children: map[string]*Node{}}
}

// Build synthesizes the tree for objs. The input slice is not modified.
func Build(objs []storage.Object) Result {
	sorted := make([]storage.Object, len(objs))
	copy(sorted, objs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	res := Result{Root: newFolder()}
	for _, obj := range sorted {
		if !insert(res.Root, obj) {
			res.Conflicts = append(res.Conflicts, obj.Key)
		}
	}
	return res
}

// insert places obj under root and reports whether it fit without conflict.
func insert(root *Node, obj storage.Object) bool {
	segments := Split(obj.Key)
	if len(segments) == 0 {
		return true
	}
	marker := obj.IsFolderMarker()

	cur := root
	for i, seg := range segments {
		terminal := i == len(segments)-1 && !marker
		existing, ok := cur.Children[seg]

		if terminal {
			if ok {
				return false
			}
			cur.Children[seg] = &Node{Kind: KindFile, Metadata: obj}
			return true
		}

		if !ok {
			existing = newFolder()
			cur.Children[seg] = existing
		} else if existing.Kind != KindFolder {
			return false
		}
		cur = existing
	}
	return true
}

// Split breaks a key into its non-empty path segments.
func Split(key string) []string {
	parts := strings.Split(key, storage.Separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lookup walks the tree along path and returns the node found there.
// An empty path returns n itself.
func (n *Node) Lookup(path string) (*Node, bool) {
	cur := n
	for _, seg := range Split(path) {
		if cur.Kind != KindFolder {
			return nil, false
		}
		next, ok := cur.Children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

type fileJSON struct {
	Type     Kind           `json:"type"`
	Metadata storage.Object `json:"metadata"`
}

type folderJSON struct {
	Type     Kind             `json:"type"`
	Children map[string]*Node `json:"children"`
}

// MarshalJSON renders {"type":"file","metadata":{...}} or
// {"type":"folder","children":{...}}. encoding/json sorts map keys, so the
// output is stable for a given tree.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Kind == KindFile {
		return json.Marshal(fileJSON{Type: KindFile, Metadata: n.Metadata})
	}
	children := n.Children
	if children == nil {
		children = map[string]*Node{}
	}
	return json.Marshal(folderJSON{Type: KindFolder, Children: children})
}
