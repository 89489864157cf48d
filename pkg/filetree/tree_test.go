package filetree

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape flattens a tree into "path:kind" lines in display order so two trees
// can be compared structurally.
func shape(roots []*Node) []string {
	var out []string
	Walk(roots, func(path string, n *Node) bool {
		out = append(out, path+":"+n.Kind.String())
		return true
	})
	return out
}

func TestBuild(t *testing.T) {
	t.Run("files and directories", func(t *testing.T) {
		roots := Build([]string{"src/a.ts", "src/b.ts", "README.md"})

		require.Len(t, roots, 2)
		assert.Equal(t, "src", roots[0].Name)
		assert.Equal(t, Directory, roots[0].Kind)
		require.Len(t, roots[0].Children, 2)
		assert.Equal(t, "a.ts", roots[0].Children[0].Name)
		assert.Equal(t, File, roots[0].Children[0].Kind)
		assert.Equal(t, "b.ts", roots[0].Children[1].Name)
		assert.Equal(t, File, roots[0].Children[1].Kind)
		assert.Equal(t, "README.md", roots[1].Name)
		assert.Equal(t, File, roots[1].Kind)
		assert.Empty(t, roots[1].Children)
	})

	t.Run("first insertion order", func(t *testing.T) {
		roots := Build([]string{"z/2", "a", "z/1", "m/x"})

		assert.Equal(t, []string{
			"z:directory",
			"z/2:file",
			"z/1:file",
			"a:file",
			"m:directory",
			"m/x:file",
		}, shape(roots))
	})

	t.Run("duplicates are idempotent", func(t *testing.T) {
		roots := Build([]string{"src/a.ts", "src/a.ts", "src/a.ts"})

		require.Len(t, roots, 1)
		require.Len(t, roots[0].Children, 1)
		assert.Equal(t, "a.ts", roots[0].Children[0].Name)
	})

	t.Run("leaf promoted to directory", func(t *testing.T) {
		roots := Build([]string{"src", "src/a.ts"})

		require.Len(t, roots, 1)
		assert.Equal(t, "src", roots[0].Name)
		assert.Equal(t, Directory, roots[0].Kind)
		require.Len(t, roots[0].Children, 1)
		assert.Equal(t, "a.ts", roots[0].Children[0].Name)
		assert.Equal(t, File, roots[0].Children[0].Kind)
	})

	t.Run("directory stays directory when named as leaf later", func(t *testing.T) {
		roots := Build([]string{"src/a.ts", "src"})

		require.Len(t, roots, 1)
		assert.Equal(t, Directory, roots[0].Kind)
		require.Len(t, roots[0].Children, 1)
	})

	t.Run("deep promotion keeps siblings", func(t *testing.T) {
		roots := Build([]string{"a/b", "a/c", "a/b/d"})

		assert.Equal(t, []string{
			"a:directory",
			"a/b:directory",
			"a/b/d:file",
			"a/c:file",
		}, shape(roots))
	})

	t.Run("empty input", func(t *testing.T) {
		roots := Build(nil)
		assert.NotNil(t, roots)
		assert.Empty(t, roots)
	})

	t.Run("malformed paths do not panic", func(t *testing.T) {
		var roots []*Node
		assert.NotPanics(t, func() {
			roots = Build([]string{"", "a//b", "c/", "/d"})
		})

		assert.Equal(t, []string{
			":directory",
			"/d:file",
			"a:directory",
			"a/:directory",
			"a//b:file",
			"c:directory",
			"c/:file",
		}, shape(roots))
	})

	t.Run("output does not alias input", func(t *testing.T) {
		paths := []string{"src/a.ts"}
		roots := Build(paths)
		paths[0] = "changed"

		assert.Equal(t, "src", roots[0].Name)
		assert.Equal(t, "a.ts", roots[0].Children[0].Name)
	})
}

func TestBuild_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"src/a.ts", "src/b.ts", "README.md"},
		{"src", "src/a.ts", "lib/x/y/z.go", "lib/x"},
		{"", "a//b", "a//b", "c/"},
	}

	for _, paths := range inputs {
		first := Build(paths)
		second := Build(paths)
		assert.Equal(t, first, second)
		assert.Equal(t, shape(first), shape(second))
	}
}

func TestBuild_KindMatchesPrefixRule(t *testing.T) {
	paths := []string{
		"src",
		"src/api/routes.ts",
		"src/api",
		"docs/index.md",
		"docs/index.md/notes",
		"main.go",
		"pkg/a/b/c.go",
	}
	roots := Build(paths)

	isStrictPrefix := func(p string) bool {
		for _, other := range paths {
			if strings.HasPrefix(other, p+Separator) {
				return true
			}
		}
		return false
	}

	for _, p := range paths {
		node := Lookup(roots, p)
		require.NotNil(t, node, p)
		if isStrictPrefix(p) {
			assert.Equal(t, Directory, node.Kind, p)
			assert.NotEmpty(t, node.Children, p)
		} else {
			assert.Equal(t, File, node.Kind, p)
			assert.Empty(t, node.Children, p)
		}
	}
}

func TestBuild_SiblingNamesUnique(t *testing.T) {
	roots := Build([]string{"a/x", "a/y", "a/x", "b", "a", "b/z", "a/y/q"})

	var check func(nodes []*Node)
	check = func(nodes []*Node) {
		seen := map[string]bool{}
		for _, n := range nodes {
			assert.False(t, seen[n.Name], "duplicate sibling %q", n.Name)
			seen[n.Name] = true
			assert.Equal(t, len(n.Children) > 0, n.IsDir(), n.Name)
			check(n.Children)
		}
	}
	check(roots)
}

func TestLookup(t *testing.T) {
	roots := Build([]string{"src/a.ts", "README.md"})

	assert.Equal(t, "a.ts", Lookup(roots, "src/a.ts").Name)
	assert.Equal(t, Directory, Lookup(roots, "src").Kind)
	assert.Nil(t, Lookup(roots, "src/missing.ts"))
	assert.Nil(t, Lookup(roots, "README.md/x"))
	assert.Nil(t, Lookup(nil, "src"))
}

func TestWalk_SkipChildren(t *testing.T) {
	roots := Build([]string{"a/b/c", "d"})

	var visited []string
	Walk(roots, func(path string, n *Node) bool {
		visited = append(visited, path)
		return path != "a/b"
	})
	assert.Equal(t, []string{"a", "a/b", "d"}, visited)
}

func TestCount(t *testing.T) {
	files, dirs := Count(Build([]string{"src/a.ts", "src/b.ts", "README.md", "src/api/x.ts"}))
	assert.Equal(t, 4, files)
	assert.Equal(t, 2, dirs)
}

func TestNode_JSON(t *testing.T) {
	roots := Build([]string{"src/a.ts"})

	data, err := json.Marshal(roots)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"src","kind":"directory","children":[{"name":"a.ts","kind":"file"}]}]`, string(data))

	var decoded []*Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, roots, decoded)
}

func TestKind_UnmarshalUnknown(t *testing.T) {
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("folder")))
}
