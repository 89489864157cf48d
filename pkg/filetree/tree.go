// Package filetree turns the flat path list of a repository into a prefix
// tree and tracks which directories are expanded and which files are
// selected while a user browses it.
package filetree

import (
	"fmt"
	"strings"
)

// Separator delimits path segments in repository-relative paths.
const Separator = "/"

// Kind classifies a tree node
type Kind int

const (
	// File is the terminal segment of at least one path and has no children
	File Kind = iota
	// Directory has at least one child
	Directory
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind as "file" or "directory"
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "file" or "directory"
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*k = File
	case "directory":
		*k = Directory
	default:
		return fmt.Errorf("unknown node kind %q", string(text))
	}
	return nil
}

// Node is one path segment of the tree
type Node struct {
	Name     string  `json:"name"`
	Kind     Kind    `json:"kind"`
	Children []*Node `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory
func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

// builder keeps a full-path index next to the ordered node slices so each
// segment lookup is constant time.
type builder struct {
	roots []*Node
	index map[string]*Node
}

// Build converts paths into a prefix tree over "/"-delimited segments.
//
// Paths are inserted in input order and children keep first-insertion order.
// Inserting the same path twice is a no-op. A node first created as a file is
// promoted to a directory once another path uses it as a prefix. Build never
// fails: empty paths or empty segments (e.g. "a//b") yield empty-named nodes.
func Build(paths []string) []*Node {
	b := &builder{
		roots: []*Node{},
		index: make(map[string]*Node, len(paths)),
	}
	for _, p := range paths {
		b.insert(p)
	}
	return b.roots
}

func (b *builder) insert(p string) {
	segments := strings.Split(p, Separator)

	var parent *Node
	full := ""
	for i, segment := range segments {
		if i == 0 {
			full = segment
		} else {
			full = full + Separator + segment
		}
		last := i == len(segments)-1

		node, ok := b.index[full]
		if !ok {
			node = &Node{Name: segment, Kind: File}
			if !last {
				node.Kind = Directory
				node.Children = []*Node{}
			}
			b.index[full] = node
			b.attach(parent, node)
		} else if !last && node.Kind == File {
			node.Kind = Directory
			node.Children = []*Node{}
		}
		parent = node
	}
}

func (b *builder) attach(parent, node *Node) {
	if parent == nil {
		b.roots = append(b.roots, node)
		return
	}
	parent.Children = append(parent.Children, node)
}

// Lookup walks roots along the segments of path and returns the node it
// reaches, or nil when some segment does not exist.
func Lookup(roots []*Node, path string) *Node {
	level := roots
	var found *Node
	for _, segment := range strings.Split(path, Separator) {
		found = nil
		for _, n := range level {
			if n.Name == segment {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		level = found.Children
	}
	return found
}

// Walk visits every node depth-first in display order. fn receives the full
// path of the node; returning false skips the node's children.
func Walk(roots []*Node, fn func(path string, n *Node) bool) {
	walk(roots, "", true, fn)
}

func walk(nodes []*Node, prefix string, top bool, fn func(string, *Node) bool) {
	for _, n := range nodes {
		full := n.Name
		if !top {
			full = prefix + Separator + n.Name
		}
		if fn(full, n) && n.IsDir() {
			walk(n.Children, full, false, fn)
		}
	}
}

// Count returns the number of file and directory nodes in the tree
func Count(roots []*Node) (files, dirs int) {
	Walk(roots, func(_ string, n *Node) bool {
		if n.IsDir() {
			dirs++
		} else {
			files++
		}
		return true
	})
	return files, dirs
}
