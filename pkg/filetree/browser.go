package filetree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPath is returned when a path does not name a node of the tree
	ErrUnknownPath = errors.New("path is not part of the tree")
	// ErrNotFile is returned when selecting a directory
	ErrNotFile = errors.New("only files can be selected")
	// ErrNotDirectory is returned when expanding a file
	ErrNotDirectory = errors.New("only directories can be expanded")
)

// Browser binds one immutable tree to the expansion and selection state of a
// single browsing session. It is not safe for concurrent use.
type Browser struct {
	roots     []*Node
	expansion Expansion
	selection Selection
	files     int
	dirs      int
}

// NewBrowser builds the tree for paths with everything collapsed and nothing
// selected. A different path list needs a new Browser.
func NewBrowser(paths []string) *Browser {
	roots := Build(paths)
	files, dirs := Count(roots)
	return &Browser{
		roots: roots,
		files: files,
		dirs:  dirs,
	}
}

// Roots returns the top level nodes
func (b *Browser) Roots() []*Node {
	return b.roots
}

// Counts returns the number of file and directory nodes
func (b *Browser) Counts() (files, dirs int) {
	return b.files, b.dirs
}

// ToggleExpansion flips a directory between expanded and collapsed
func (b *Browser) ToggleExpansion(path string) (bool, error) {
	node := Lookup(b.roots, path)
	if node == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	if !node.IsDir() {
		return false, fmt.Errorf("%w: %q", ErrNotDirectory, path)
	}
	return b.expansion.Toggle(path), nil
}

// ToggleSelection flips the selected flag of a file. Directories are
// rejected; selecting one never selects its descendants.
func (b *Browser) ToggleSelection(path string) (bool, error) {
	node := Lookup(b.roots, path)
	if node == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	if node.IsDir() {
		return false, fmt.Errorf("%w: %q", ErrNotFile, path)
	}
	return b.selection.Toggle(path), nil
}

// Expanded returns the expanded directory paths
func (b *Browser) Expanded() []string {
	return b.expansion.Paths()
}

// IsExpanded reports whether a directory is expanded
func (b *Browser) IsExpanded(path string) bool {
	return b.expansion.Contains(path)
}

// Selected returns the selected file paths in the order they were first
// toggled. This is the payload for artifact generation.
func (b *Browser) Selected() []string {
	return b.selection.Selected()
}
