package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/denysvitali/postlog-dashboard/internal/models"
	"github.com/denysvitali/postlog-dashboard/pkg/filetree"
)

var (
	treeRoot   string
	treeSelect []string
)

// treeCmd renders a path list the way the dashboard would show it
var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Render a list of repository paths as a tree",
	Long: `Read newline separated repository paths from a file or stdin and print
the resulting file tree. With --select the given files are selected in order
and the collection request payload is printed after the tree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringVar(&treeRoot, "root", ".", "Label of the root node")
	treeCmd.Flags().StringSliceVarP(&treeSelect, "select", "s", nil, "File paths to select")
}

func runTree(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open path list: %w", err)
		}
		defer f.Close()
		in = f
	}

	paths, err := readPaths(in)
	if err != nil {
		return err
	}

	browser := filetree.NewBrowser(paths)
	out := cmd.OutOrStdout()
	if err := filetree.Render(out, treeRoot, browser.Roots()); err != nil {
		return err
	}

	if len(treeSelect) == 0 {
		return nil
	}
	for _, p := range treeSelect {
		if _, err := browser.ToggleSelection(p); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(models.GenerateCollectionRequest{FilePaths: browser.Selected()})
}

// readPaths returns the non-blank lines of r
func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}
	return paths, nil
}
