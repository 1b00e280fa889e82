package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/agentic-research/shapematch/internal/ingest"
	"github.com/agentic-research/shapematch/internal/shape"
	"github.com/agentic-research/shapematch/internal/store"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	lang   string
	query  string
	all    bool
	config shape.Config
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search [corpus.hcl] [candidate...]",
	Short: "Look up candidate files in a corpus of generalized patterns",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := searchOpts
		opts.lang = langName
		opts.config = shapeConfig()
		return runSearch(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1:])
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchOpts.query, "query", "q", "", "Tree-sitter query selecting the candidate subtrees")
	searchCmd.Flags().BoolVarP(&searchOpts.all, "all", "a", false, "Report every matching pattern, not just the first")
	rootCmd.AddCommand(searchCmd)
}

// runSearch prints "location<TAB>pattern<TAB>payload" for each hit. It
// returns errNoMatch when no candidate matches any pattern.
func runSearch(ctx context.Context, out io.Writer, opts searchOptions, corpusPath string, paths []string) error {
	fsys, name, err := openFile(corpusPath)
	if err != nil {
		return err
	}
	st, err := ingest.BuildStore(ctx, fsys, name, opts.config)
	if err != nil {
		return err
	}

	matched := false
	for _, path := range paths {
		cands, err := loadTrees(ctx, path, opts.lang, opts.query)
		if err != nil {
			return err
		}
		for _, c := range cands {
			hits, err := lookup(st, c.tree, opts.all)
			if err != nil {
				return fmt.Errorf("%s: %w", c.where, err)
			}
			for _, e := range hits {
				matched = true
				if _, err := fmt.Fprintf(out, "%s\t%s\t%v\n", c.where, e.Name, e.Payload); err != nil {
					return err
				}
			}
		}
	}
	if !matched {
		return errNoMatch
	}
	return nil
}

func lookup(st *store.Store, tree shape.Node, all bool) ([]store.Entry, error) {
	if all {
		return st.SearchAll(tree)
	}
	e, ok, err := st.Search(tree)
	if err != nil || !ok {
		return nil, err
	}
	return []store.Entry{e}, nil
}
