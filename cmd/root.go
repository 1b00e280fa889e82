package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/shapematch/internal/ingest"
	"github.com/agentic-research/shapematch/internal/shape"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
)

// errNoMatch makes the process exit with status 1 without printing, like grep.
var errNoMatch = errors.New("no match")

var (
	langName string
	maxDepth int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&langName, "lang", "l", "", "Source language (default: detect from file extension)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", shape.DefaultMaxDepth, "Reject trees nested deeper than this (0 = unlimited)")
}

var rootCmd = &cobra.Command{
	Use:          "shapematch",
	Short:        "Generalize code examples into structural patterns and search code by shape",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNoMatch) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func shapeConfig() shape.Config {
	return shape.Config{MaxDepth: maxDepth}
}

// openFile returns a filesystem rooted at the directory holding path,
// and the file's name within it.
func openFile(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return osfs.New(filepath.Dir(abs)), filepath.Base(abs), nil
}

// located is a parsed tree and where it came from.
type located struct {
	tree  shape.Node
	where string
}

// loadTrees parses path. With a query, every selected subtree is returned
// and located by line.
func loadTrees(ctx context.Context, path, lang, query string) ([]located, error) {
	var (
		parser *ingest.Parser
		err    error
	)
	if lang != "" {
		parser, err = ingest.NewParser(lang)
	} else {
		parser, err = ingest.NewParserForFile(path)
	}
	if err != nil {
		return nil, err
	}

	fsys, name, err := openFile(path)
	if err != nil {
		return nil, err
	}
	src, err := util.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if query == "" {
		tree, err := parser.Parse(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []located{{tree: tree, where: path}}, nil
	}
	sels, err := parser.ParseSelect(ctx, src, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]located, len(sels))
	for i, s := range sels {
		out[i] = located{tree: s.Tree, where: fmt.Sprintf("%s:%d", path, s.Line)}
	}
	return out, nil
}
