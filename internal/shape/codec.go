package shape

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// JSON object keys. Each node kind uses its own key so markers can never be
// confused with identifier or number values.
const (
	keyIdent   = "id"
	keyNumber  = "num"
	keyTag     = "tag"
	keyKids    = "kids"
	keyBlock   = "block"
	keyDiffers = "differs"
	keyAbsent  = "absent"
)

// Encode renders n as compact JSON with sorted keys.
//
//	{"id":"v1"}  {"num":"1"}  {"kids":[...],"tag":"class"}
//	{"block":[...]}  {"differs":true}  {"absent":true}
//
// An interior node without a "tag" key accepts any construct.
func Encode(n Node) string {
	return oj.JSON(toGeneric(n), &ojg.Options{Sort: true})
}

// EncodeIndent is Encode with indentation, for human consumption.
func EncodeIndent(n Node, indent int) string {
	return oj.JSON(toGeneric(n), &ojg.Options{Sort: true, Indent: indent})
}

// Decode parses JSON produced by Encode and validates the result as a pattern.
func Decode(s string) (Node, error) {
	v, err := oj.ParseString(s)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	n, err := fromGeneric(v)
	if err != nil {
		return Node{}, err
	}
	if err := Validate(n, 0); err != nil {
		return Node{}, err
	}
	return n, nil
}

func toGeneric(n Node) any {
	switch n.Kind {
	case KindLeaf:
		if n.Leaf == NumberLeaf {
			return map[string]any{keyNumber: n.Value}
		}
		return map[string]any{keyIdent: n.Value}
	case KindInterior:
		m := map[string]any{keyKids: listGeneric(n.Children)}
		if n.Tag != "" {
			m[keyTag] = n.Tag
		}
		return m
	case KindBlock:
		return map[string]any{keyBlock: listGeneric(n.Children)}
	case KindDiffers:
		return map[string]any{keyDiffers: true}
	case KindAbsent:
		return map[string]any{keyAbsent: true}
	default:
		return nil
	}
}

func listGeneric(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, c := range nodes {
		out[i] = toGeneric(c)
	}
	return out
}

func fromGeneric(v any) (Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Node{}, fmt.Errorf("%w: expected object, got %T", ErrMalformed, v)
	}
	switch {
	case has(m, keyIdent):
		s, err := stringField(m, keyIdent)
		return Ident(s), err
	case has(m, keyNumber):
		s, err := stringField(m, keyNumber)
		return Number(s), err
	case has(m, keyDiffers):
		return Differs(), nil
	case has(m, keyAbsent):
		return Absent(), nil
	case has(m, keyBlock):
		kids, err := listField(m, keyBlock)
		return Node{Kind: KindBlock, Children: kids}, err
	case has(m, keyKids):
		kids, err := listField(m, keyKids)
		if err != nil {
			return Node{}, err
		}
		tag := ""
		if has(m, keyTag) {
			if tag, err = stringField(m, keyTag); err != nil {
				return Node{}, err
			}
		}
		return Node{Kind: KindInterior, Tag: tag, Children: kids}, nil
	default:
		return Node{}, fmt.Errorf("%w: unrecognized object %v", ErrMalformed, m)
	}
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func stringField(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrMalformed, key, m[key])
	}
	return s, nil
}

func listField(m map[string]any, key string) ([]Node, error) {
	raw, ok := m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an array, got %T", ErrMalformed, key, m[key])
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Node, len(raw))
	for i, r := range raw {
		n, err := fromGeneric(r)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
