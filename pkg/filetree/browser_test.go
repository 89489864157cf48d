package filetree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowser_SelectAndCollect(t *testing.T) {
	b := NewBrowser([]string{"src/a.ts", "src/b.ts", "README.md"})

	files, dirs := b.Counts()
	assert.Equal(t, 3, files)
	assert.Equal(t, 1, dirs)
	assert.Empty(t, b.Expanded())
	assert.Empty(t, b.Selected())

	selected, err := b.ToggleSelection("src/a.ts")
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []string{"src/a.ts"}, b.Selected())
}

func TestBrowser_ToggleSelectionRejects(t *testing.T) {
	b := NewBrowser([]string{"src/a.ts"})

	_, err := b.ToggleSelection("src")
	assert.ErrorIs(t, err, ErrNotFile)

	_, err = b.ToggleSelection("src/missing.ts")
	assert.ErrorIs(t, err, ErrUnknownPath)

	assert.Empty(t, b.Selected())
}

func TestBrowser_ToggleExpansion(t *testing.T) {
	b := NewBrowser([]string{"src/api/routes.ts"})

	expanded, err := b.ToggleExpansion("src")
	require.NoError(t, err)
	assert.True(t, expanded)
	assert.True(t, b.IsExpanded("src"))

	expanded, err = b.ToggleExpansion("src")
	require.NoError(t, err)
	assert.False(t, expanded)
	assert.Empty(t, b.Expanded())

	_, err = b.ToggleExpansion("src/api/routes.ts")
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = b.ToggleExpansion("lib")
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestBrowser_ExpansionDoesNotTouchSelection(t *testing.T) {
	b := NewBrowser([]string{"src/a.ts"})
	_, err := b.ToggleSelection("src/a.ts")
	require.NoError(t, err)

	_, err = b.ToggleExpansion("src")
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.ts"}, b.Selected())
}

func TestBrowser_NewPathListResetsState(t *testing.T) {
	b := NewBrowser([]string{"src/a.ts"})
	_, _ = b.ToggleSelection("src/a.ts")
	_, _ = b.ToggleExpansion("src")

	b = NewBrowser([]string{"src/a.ts", "src/b.ts"})
	assert.Empty(t, b.Selected())
	assert.Empty(t, b.Expanded())
}

func TestRender(t *testing.T) {
	roots := Build([]string{"src/a.ts", "src/b.ts", "README.md"})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "repo", roots))

	out := buf.String()
	assert.Contains(t, out, "repo")
	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "a.ts")
	assert.Contains(t, out, "b.ts")
	assert.Contains(t, out, "README.md")
}

func TestRender_EmptyNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "repo", Build([]string{"a//b"})))
	assert.Contains(t, buf.String(), `""/`)
}
