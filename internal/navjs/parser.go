// Package navjs reads the JavaScript data files Doxygen generates for its
// navigation sidebar. Files are parsed with tree-sitter and every top-level
// variable initialised with a literal is exposed as a Value.
package navjs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// File holds the literal variables declared in one script.
type File struct {
	Path  string
	vars  map[string]Value
	names []string
}

// Var returns the literal assigned to name.
func (f *File) Var(name string) (Value, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// Names lists the declared variables in source order.
func (f *File) Names() []string {
	return append([]string(nil), f.names...)
}

// Parse extracts the top-level literal variables of a script.
func Parse(filename string, content []byte) (*File, error) {
	return ParseCtx(context.Background(), filename, content)
}

func ParseCtx(ctx context.Context, filename string, content []byte) (*File, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		return nil, fmt.Errorf("parse %s: syntax error near line %d", filename, line)
	}

	f := &File{
		Path: filename,
		vars: make(map[string]Value),
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "variable_declaration", "lexical_declaration":
			if err := f.collectDeclarators(stmt, content); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}
		}
	}
	return f, nil
}

func (f *File) collectDeclarators(stmt *sitter.Node, content []byte) error {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		decl := stmt.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}

		name := nameNode.Content(content)
		value, err := literal(valueNode, content)
		if err != nil {
			return fmt.Errorf("variable %s: %w", name, err)
		}
		if _, seen := f.vars[name]; !seen {
			f.names = append(f.names, name)
		}
		f.vars[name] = value
	}
	return nil
}

func literal(node *sitter.Node, content []byte) (Value, error) {
	line := int(node.StartPoint().Row) + 1
	switch node.Type() {
	case "null":
		return Value{Kind: KindNull, Line: line}, nil
	case "undefined":
		return Value{Kind: KindNull, Line: line}, nil
	case "true", "false":
		return Value{Kind: KindBool, Bool: node.Type() == "true", Line: line}, nil
	case "number":
		n, err := parseNumber(node.Content(content))
		if err != nil {
			return Value{}, fmt.Errorf("line %d: %w", line, err)
		}
		return Value{Kind: KindNumber, Num: n, Line: line}, nil
	case "string":
		s, err := decodeString(node, content)
		if err != nil {
			return Value{}, fmt.Errorf("line %d: %w", line, err)
		}
		return Value{Kind: KindString, Str: s, Line: line}, nil
	case "unary_expression":
		op := node.ChildByFieldName("operator")
		arg := node.ChildByFieldName("argument")
		if op != nil && arg != nil && arg.Type() == "number" {
			v, err := literal(arg, content)
			if err != nil {
				return Value{}, err
			}
			switch op.Content(content) {
			case "-":
				v.Num = -v.Num
				return v, nil
			case "+":
				return v, nil
			}
		}
	case "parenthesized_expression":
		if node.NamedChildCount() == 1 {
			return literal(node.NamedChild(0), content)
		}
	case "array":
		items := make([]Value, 0, node.NamedChildCount())
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			item, err := literal(child, content)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{Kind: KindArray, Items: items, Line: line}, nil
	case "object":
		fields := make([]Field, 0, node.NamedChildCount())
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "pair" {
				if child.Type() == "comment" {
					continue
				}
				return Value{}, fmt.Errorf("line %d: unsupported object member %s", int(child.StartPoint().Row)+1, child.Type())
			}
			key, err := objectKey(child.ChildByFieldName("key"), content)
			if err != nil {
				return Value{}, err
			}
			valueNode := child.ChildByFieldName("value")
			if valueNode == nil {
				return Value{}, fmt.Errorf("line %d: object key %q has no value", line, key)
			}
			value, err := literal(valueNode, content)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: value})
		}
		return Value{Kind: KindObject, Fields: fields, Line: line}, nil
	}
	return Value{}, fmt.Errorf("line %d: unsupported expression %s", line, node.Type())
}

func objectKey(node *sitter.Node, content []byte) (string, error) {
	if node == nil {
		return "", fmt.Errorf("object pair without key")
	}
	switch node.Type() {
	case "string":
		return decodeString(node, content)
	case "property_identifier", "number":
		return node.Content(content), nil
	}
	return "", fmt.Errorf("line %d: unsupported object key %s", int(node.StartPoint().Row)+1, node.Type())
}

func parseNumber(raw string) (float64, error) {
	raw = strings.ReplaceAll(raw, "_", "")
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	n, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return float64(n), nil
}

// decodeString joins the fragments of a string literal, resolving escapes.
func decodeString(node *sitter.Node, content []byte) (string, error) {
	var b strings.Builder
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "string_fragment":
			b.WriteString(child.Content(content))
		case "escape_sequence":
			decoded, err := decodeEscape(child.Content(content))
			if err != nil {
				return "", err
			}
			b.WriteString(decoded)
		}
	}
	return b.String(), nil
}

func decodeEscape(seq string) (string, error) {
	if len(seq) < 2 || seq[0] != '\\' {
		return "", fmt.Errorf("invalid escape %q", seq)
	}
	switch seq[1] {
	case '\'', '"', '\\', '/':
		return seq[1:2], nil
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case 'b':
		return "\b", nil
	case 'f':
		return "\f", nil
	case 'v':
		return "\v", nil
	case '0':
		if len(seq) == 2 {
			return "\x00", nil
		}
	case '\n', '\r':
		return "", nil
	case 'x':
		if len(seq) == 4 {
			n, err := strconv.ParseUint(seq[2:], 16, 8)
			if err == nil {
				return string(rune(n)), nil
			}
		}
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(seq[2:], "{"), "}")
		n, err := strconv.ParseUint(hex, 16, 32)
		if err == nil && utf8.ValidRune(rune(n)) {
			return string(rune(n)), nil
		}
	default:
		return seq[1:], nil
	}
	return "", fmt.Errorf("invalid escape %q", seq)
}

func firstErrorLine(node *sitter.Node) int {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row) + 1
}
