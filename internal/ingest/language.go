package ingest

import (
	"strings"

	"github.com/agentic-research/shapematch/internal/shape"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// DetectLanguageFromExt returns the language name and tree-sitter Language
// for a given file extension. Returns ok=false for unsupported extensions.
func DetectLanguageFromExt(ext string) (langName string, lang *sitter.Language, ok bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return "go", golang.GetLanguage(), true
	case ".py":
		return "python", python.GetLanguage(), true
	case ".tf", ".hcl":
		return "terraform", hcl.GetLanguage(), true
	case ".js":
		return "javascript", javascript.GetLanguage(), true
	case ".ts", ".tsx":
		return "typescript", typescript.GetLanguage(), true
	case ".rs":
		return "rust", rust.GetLanguage(), true
	case ".sql":
		return "sql", sql.GetLanguage(), true
	case ".yaml", ".yml":
		return "yaml", yaml.GetLanguage(), true
	default:
		return "", nil, false
	}
}

// LanguageByName resolves a language name as returned by DetectLanguageFromExt.
func LanguageByName(name string) (*sitter.Language, bool) {
	switch strings.ToLower(name) {
	case "go", "golang":
		return golang.GetLanguage(), true
	case "python", "py":
		return python.GetLanguage(), true
	case "terraform", "hcl":
		return hcl.GetLanguage(), true
	case "javascript", "js":
		return javascript.GetLanguage(), true
	case "typescript", "ts":
		return typescript.GetLanguage(), true
	case "rust", "rs":
		return rust.GetLanguage(), true
	case "sql":
		return sql.GetLanguage(), true
	case "yaml", "yml":
		return yaml.GetLanguage(), true
	default:
		return nil, false
	}
}

// LanguageProfile decides how tree-sitter node types translate into
// shape nodes. Node types not mentioned anywhere become interior nodes
// tagged with their tree-sitter type, holding their named children.
type LanguageProfile struct {
	// Tags renames constructs (e.g. class_definition -> class).
	Tags map[string]string
	// Leaves lists node types whose source text is the value.
	Leaves map[string]shape.LeafKind
	// Blocks lists statement-list node types, translated as blocks.
	Blocks map[string]bool
	// Lists lists node types translated with shape.Seq, so a single
	// element stands for itself.
	Lists map[string]bool
	// Transparent lists wrappers replaced by their only named child.
	Transparent map[string]bool
	// Opaque lists node types kept as childless interior nodes; their
	// content is ignored.
	Opaque map[string]bool
	// Skip lists node types dropped entirely.
	Skip map[string]bool
	// OperatorTags tags nodes carrying an "operator" field with the
	// operator token itself, so a+b and a-b are different constructs.
	OperatorTags bool
}

// leafKind classifies a childless node type. Any *identifier type is an
// identifier in every grammar we ship.
func (p *LanguageProfile) leafKind(nodeType string) (shape.LeafKind, bool) {
	if k, ok := p.Leaves[nodeType]; ok {
		return k, true
	}
	if strings.HasSuffix(nodeType, "identifier") {
		return shape.IdentLeaf, true
	}
	return 0, false
}

func (p *LanguageProfile) tag(nodeType string) string {
	if t, ok := p.Tags[nodeType]; ok {
		return t
	}
	return nodeType
}

// GetLanguageProfile returns a profile for the given language name.
// Unknown languages get a generic profile.
func GetLanguageProfile(langName string) *LanguageProfile {
	switch strings.ToLower(langName) {
	case "python", "py":
		return pythonProfile()
	case "go", "golang":
		return goProfile()
	default:
		return genericProfile()
	}
}

func genericProfile() *LanguageProfile {
	return &LanguageProfile{
		Leaves: map[string]shape.LeafKind{
			"integer":         shape.NumberLeaf,
			"float":           shape.NumberLeaf,
			"number":          shape.NumberLeaf,
			"integer_literal": shape.NumberLeaf,
			"float_literal":   shape.NumberLeaf,
			"numeric_lit":     shape.NumberLeaf,
		},
		Tags:         map[string]string{},
		Blocks:       map[string]bool{"program": true, "block": true, "statement_block": true},
		Lists:        map[string]bool{},
		Transparent:  map[string]bool{"expression_statement": true, "parenthesized_expression": true},
		Opaque:       map[string]bool{"string": true, "string_literal": true, "string_lit": true},
		Skip:         map[string]bool{"comment": true, "line_comment": true, "block_comment": true},
		OperatorTags: true,
	}
}

func pythonProfile() *LanguageProfile {
	p := genericProfile()
	p.Tags = map[string]string{
		"class_definition":     "class",
		"function_definition":  "def",
		"assignment":           "=",
		"augmented_assignment": "op=",
		"call":                 "call",
		"return_statement":     "return",
		"attribute":            ".",
	}
	p.Leaves = map[string]shape.LeafKind{
		"integer": shape.NumberLeaf,
		"float":   shape.NumberLeaf,
	}
	p.Blocks = map[string]bool{"module": true, "block": true}
	p.Lists = map[string]bool{"pattern_list": true, "expression_list": true}
	p.Opaque = map[string]bool{
		"string":              true,
		"concatenated_string": true,
		"true":                true,
		"false":               true,
		"none":                true,
		"pass_statement":      true,
	}
	return p
}

func goProfile() *LanguageProfile {
	p := genericProfile()
	p.Tags = map[string]string{
		"function_declaration":  "func",
		"method_declaration":    "method",
		"short_var_declaration": ":=",
		"assignment_statement":  "=",
		"call_expression":       "call",
		"return_statement":      "return",
		"selector_expression":   ".",
	}
	p.Leaves = map[string]shape.LeafKind{
		"int_literal":       shape.NumberLeaf,
		"float_literal":     shape.NumberLeaf,
		"imaginary_literal": shape.NumberLeaf,
	}
	p.Blocks = map[string]bool{"source_file": true, "block": true, "statement_list": true}
	p.Lists = map[string]bool{"expression_list": true}
	p.Opaque = map[string]bool{
		"interpreted_string_literal": true,
		"raw_string_literal":         true,
		"rune_literal":               true,
		"true":                       true,
		"false":                      true,
		"nil":                        true,
	}
	return p
}
