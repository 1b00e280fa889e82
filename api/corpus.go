package api

// Corpus describes the patterns to index. It is decoded from an HCL file:
//
//	pattern "class_fields" {
//	  payload  = "classes that only declare fields"
//	  examples = ["a.py", "b.py"]
//	}
type Corpus struct {
	Patterns []Pattern `hcl:"pattern,block"`
}

// Pattern is one generalized pattern and the examples it is derived from.
type Pattern struct {
	// Name labels the pattern in search results.
	Name string `hcl:"name,label"`
	// Payload is returned when a candidate matches. Defaults to Name.
	Payload string `hcl:"payload,optional"`
	// Language overrides detection from the example file extensions.
	Language string `hcl:"language,optional"`
	// Query is a tree-sitter query selecting the subtree of each example to
	// generalize. Empty means the whole file.
	Query string `hcl:"query,optional"`
	// Examples are source files, relative to the corpus file. At least two.
	Examples []string `hcl:"examples"`
}
