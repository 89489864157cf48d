package filetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpansion_Toggle(t *testing.T) {
	var e Expansion

	assert.True(t, e.Toggle("src"))
	assert.True(t, e.Contains("src"))
	assert.False(t, e.Toggle("src"))
	assert.False(t, e.Contains("src"))
	assert.Equal(t, 0, e.Len())
	assert.Empty(t, e.Paths())
}

func TestExpansion_DoubleToggleIdentity(t *testing.T) {
	var e Expansion
	e.Toggle("lib")
	e.Toggle("docs")

	for _, p := range []string{"src", "lib", "", "a//b"} {
		before := e.Clone()
		e.Toggle(p)
		e.Toggle(p)
		assert.True(t, before.Equal(&e), p)
	}
}

func TestExpansion_PathsSorted(t *testing.T) {
	var e Expansion
	e.Toggle("src/api")
	e.Toggle("docs")
	e.Toggle("src")

	assert.Equal(t, []string{"docs", "src", "src/api"}, e.Paths())
}

func TestExpansion_CloneIsIndependent(t *testing.T) {
	var e Expansion
	e.Toggle("src")
	c := e.Clone()
	c.Toggle("lib")

	assert.False(t, e.Contains("lib"))
	assert.False(t, e.Equal(c))
}

func TestSelection_Toggle(t *testing.T) {
	var s Selection

	assert.True(t, s.Toggle("src/a.ts"), "first toggle selects")
	assert.True(t, s.IsSelected("src/a.ts"))
	assert.False(t, s.Toggle("src/a.ts"))
	assert.False(t, s.IsSelected("src/a.ts"))
	assert.False(t, s.IsSelected("never/touched"))
}

func TestSelection_DoubleToggleIdentity(t *testing.T) {
	var s Selection
	s.Toggle("README.md")

	for _, p := range []string{"README.md", "src/a.ts", ""} {
		before := s.Clone()
		s.Toggle(p)
		s.Toggle(p)
		assert.True(t, before.Equal(&s), p)
		assert.Equal(t, before.Selected(), s.Selected(), p)
	}
}

func TestSelection_Selected(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var s Selection
		selected := s.Selected()
		require.NotNil(t, selected)
		assert.Empty(t, selected)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("first insertion order", func(t *testing.T) {
		var s Selection
		s.Toggle("c")
		s.Toggle("a")
		s.Toggle("b")
		s.Toggle("a")
		s.Toggle("a")

		assert.Equal(t, []string{"c", "a", "b"}, s.Selected())
		assert.Equal(t, 3, s.Len())
	})

	t.Run("only true flags", func(t *testing.T) {
		var s Selection
		s.Toggle("x")
		s.Toggle("y")
		s.Toggle("x")

		assert.Equal(t, []string{"y"}, s.Selected())
	})
}

func TestSelection_Equal(t *testing.T) {
	var a, b Selection
	a.Toggle("x")
	a.Toggle("x")

	assert.True(t, a.Equal(&b), "false flags equal absent keys")
	b.Toggle("y")
	assert.False(t, a.Equal(&b))
	assert.False(t, b.Equal(&a))
}
