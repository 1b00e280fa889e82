package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/agentic-research/shapematch/internal/shape"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
)

type matchOptions struct {
	lang   string
	query  string
	config shape.Config
}

var matchOpts matchOptions

var matchCmd = &cobra.Command{
	Use:   "match [pattern.json] [candidate...]",
	Short: "Test candidate files against a pattern written by generalize --json",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := matchOpts
		opts.lang = langName
		opts.config = shapeConfig()
		return runMatch(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1:])
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchOpts.query, "query", "q", "", "Tree-sitter query selecting the candidate subtrees")
	rootCmd.AddCommand(matchCmd)
}

func loadPattern(path string) (shape.Node, error) {
	fsys, name, err := openFile(path)
	if err != nil {
		return shape.Node{}, err
	}
	raw, err := util.ReadFile(fsys, name)
	if err != nil {
		return shape.Node{}, fmt.Errorf("read pattern: %w", err)
	}
	pattern, err := shape.Decode(string(raw))
	if err != nil {
		return shape.Node{}, fmt.Errorf("pattern %s: %w", path, err)
	}
	return pattern, nil
}

// runMatch prints every candidate that matches. It returns errNoMatch when
// none does.
func runMatch(ctx context.Context, out io.Writer, opts matchOptions, patternPath string, paths []string) error {
	pattern, err := loadPattern(patternPath)
	if err != nil {
		return err
	}

	m := &shape.Matcher{Config: opts.config}
	matched := false
	for _, path := range paths {
		cands, err := loadTrees(ctx, path, opts.lang, opts.query)
		if err != nil {
			return err
		}
		for _, c := range cands {
			ok, err := m.Match(c.tree, pattern)
			if err != nil {
				return fmt.Errorf("%s: %w", c.where, err)
			}
			if !ok {
				continue
			}
			matched = true
			if _, err := fmt.Fprintln(out, c.where); err != nil {
				return err
			}
		}
	}
	if !matched {
		return errNoMatch
	}
	return nil
}
