package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTreeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Cleanup(func() {
		treeRoot = "."
		treeSelect = nil
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"tree"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadPaths(t *testing.T) {
	paths, err := readPaths(strings.NewReader("src/a.ts\r\n\n  \nREADME.md\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts", "README.md"}, paths)
}

func TestTreeCommand(t *testing.T) {
	out, err := runTreeCommand(t, "src/a.ts\nsrc/lib/b.ts\nREADME.md\n", "--root", "api")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "api\n"))
	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "lib/")
	assert.Contains(t, out, "b.ts")
	assert.NotContains(t, out, "filepaths")
}

func TestTreeCommand_Select(t *testing.T) {
	out, err := runTreeCommand(t, "src/a.ts\nsrc/lib/b.ts\nREADME.md\n", "--select", "README.md,src/a.ts")
	require.NoError(t, err)

	assert.Contains(t, out, `"filepaths": [`)
	assert.Less(t, strings.Index(out, `"README.md"`), strings.Index(out, `"src/a.ts"`))
}

func TestTreeCommand_SelectDirectory(t *testing.T) {
	_, err := runTreeCommand(t, "src/a.ts\n", "--select", "src")
	assert.Error(t, err)
}
