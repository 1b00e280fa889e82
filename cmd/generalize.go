package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/agentic-research/shapematch/internal/shape"
	"github.com/spf13/cobra"
)

type generalizeOptions struct {
	lang   string
	query  string
	json   bool
	indent int
	config shape.Config
}

var genOpts generalizeOptions

var generalizeCmd = &cobra.Command{
	Use:   "generalize [example] [example...]",
	Short: "Print the pattern common to two or more example files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := genOpts
		opts.lang = langName
		opts.config = shapeConfig()
		return runGeneralize(cmd.Context(), cmd.OutOrStdout(), opts, args)
	},
}

func init() {
	generalizeCmd.Flags().StringVarP(&genOpts.query, "query", "q", "", "Tree-sitter query selecting the subtrees to generalize")
	generalizeCmd.Flags().BoolVar(&genOpts.json, "json", false, "Print the pattern as JSON (input for match)")
	generalizeCmd.Flags().IntVar(&genOpts.indent, "indent", 0, "JSON indentation")
	rootCmd.AddCommand(generalizeCmd)
}

func runGeneralize(ctx context.Context, out io.Writer, opts generalizeOptions, paths []string) error {
	var trees []shape.Node
	for _, path := range paths {
		got, err := loadTrees(ctx, path, opts.lang, opts.query)
		if err != nil {
			return err
		}
		for _, l := range got {
			trees = append(trees, l.tree)
		}
	}

	g := &shape.Generalizer{Config: opts.config}
	pattern, err := g.Generalize(trees...)
	if err != nil {
		return err
	}

	switch {
	case opts.json && opts.indent > 0:
		_, err = fmt.Fprintln(out, shape.EncodeIndent(pattern, opts.indent))
	case opts.json:
		_, err = fmt.Fprintln(out, shape.Encode(pattern))
	default:
		_, err = fmt.Fprintln(out, pattern.String())
	}
	return err
}
