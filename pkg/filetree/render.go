package filetree

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"
)

// Render writes an ASCII drawing of roots below a node labelled rootName.
// Directories are suffixed with "/"; empty segment names are shown as "".
func Render(w io.Writer, rootName string, roots []*Node) error {
	root := gtree.NewRoot(rootName)
	addNodes(root, roots)
	if err := gtree.OutputProgrammably(w, root); err != nil {
		return fmt.Errorf("failed to render tree: %w", err)
	}
	return nil
}

func addNodes(parent *gtree.Node, nodes []*Node) {
	for _, n := range nodes {
		child := parent.Add(label(n))
		if n.IsDir() {
			addNodes(child, n.Children)
		}
	}
}

func label(n *Node) string {
	name := n.Name
	if name == "" {
		name = `""`
	}
	if n.IsDir() {
		return name + Separator
	}
	return name
}
