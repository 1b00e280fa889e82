package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/agentic-research/shapematch/api"
	"github.com/agentic-research/shapematch/internal/shape"
	"github.com/agentic-research/shapematch/internal/store"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// LoadCorpus reads and decodes an HCL corpus description.
func LoadCorpus(fsys billy.Basic, path string) (*api.Corpus, error) {
	src, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c api.Corpus
	// hclsimple picks the syntax from the file name, so keep the extension.
	if err := hclsimple.Decode(filepath.Base(path), src, nil, &c); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	return &c, nil
}

// Indexer turns corpus patterns into generalized store entries.
type Indexer struct {
	// FS resolves example paths.
	FS     billy.Basic
	Config shape.Config
}

// BuildStore loads the corpus at path and indexes it. Example paths are
// resolved relative to the corpus file.
func BuildStore(ctx context.Context, fsys billy.Filesystem, path string, cfg shape.Config) (*store.Store, error) {
	corpus, err := LoadCorpus(fsys, path)
	if err != nil {
		return nil, err
	}
	ix := &Indexer{FS: chroot.New(fsys, filepath.Dir(path)), Config: cfg}
	return ix.Index(ctx, corpus)
}

// Index generalizes every pattern of corpus into a new store, in order.
func (ix *Indexer) Index(ctx context.Context, corpus *api.Corpus) (*store.Store, error) {
	st := store.New(ix.Config)
	seen := make(map[string]bool, len(corpus.Patterns))
	for _, p := range corpus.Patterns {
		if seen[p.Name] {
			log.Printf("corpus: duplicate pattern %q, the earlier one wins on search", p.Name)
		}
		seen[p.Name] = true

		pattern, err := ix.Pattern(ctx, p)
		if err != nil {
			return nil, err
		}
		payload := p.Payload
		if payload == "" {
			payload = p.Name
		}
		if _, err := st.Add(p.Name, pattern, payload); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Pattern generalizes the examples of p. With a query, every selected
// subtree of every example file counts as one example.
func (ix *Indexer) Pattern(ctx context.Context, p api.Pattern) (shape.Node, error) {
	var trees []shape.Node
	for _, path := range p.Examples {
		got, err := ix.LoadTrees(ctx, path, p.Language, p.Query)
		if err != nil {
			return shape.Node{}, fmt.Errorf("pattern %q: %w", p.Name, err)
		}
		trees = append(trees, got...)
	}
	g := &shape.Generalizer{Config: ix.Config}
	pattern, err := g.Generalize(trees...)
	if err != nil {
		return shape.Node{}, fmt.Errorf("pattern %q: %w", p.Name, err)
	}
	return pattern, nil
}

// LoadTrees parses one source file. An empty query yields the whole file as
// a single tree. langName may be empty to detect from the extension.
func (ix *Indexer) LoadTrees(ctx context.Context, path, langName, query string) ([]shape.Node, error) {
	parser, err := parserFor(path, langName)
	if err != nil {
		return nil, err
	}
	src, err := util.ReadFile(ix.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if query == "" {
		tree, err := parser.Parse(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []shape.Node{tree}, nil
	}
	sels, err := parser.ParseSelect(ctx, src, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	trees := make([]shape.Node, len(sels))
	for i, s := range sels {
		trees[i] = s.Tree
	}
	return trees, nil
}

func parserFor(path, langName string) (*Parser, error) {
	if langName != "" {
		return NewParser(langName)
	}
	return NewParserForFile(path)
}
