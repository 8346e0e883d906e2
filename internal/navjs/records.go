package navjs

import (
	"fmt"

	"github.com/morozRed/doxnav/internal/navtree"
)

// Records decodes a list of navigation records of the form
// [title, link, children|null|"sentinel", ...]. Slots past the third are
// ignored. A record without a string title yields a *navtree.MalformedTreeError.
func Records(v Value) ([]navtree.Spec, error) {
	return records(v, nil)
}

func records(v Value, path []int) ([]navtree.Spec, error) {
	if v.Kind != KindArray {
		return nil, &navtree.MalformedTreeError{
			Path:   path,
			Reason: fmt.Sprintf("line %d: expected record list, got %s", v.Line, v.Kind),
		}
	}
	out := make([]navtree.Spec, 0, len(v.Items))
	for i, item := range v.Items {
		spec, err := record(item, append(path[:len(path):len(path)], i))
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func record(v Value, path []int) (navtree.Spec, error) {
	fail := func(format string, args ...any) (navtree.Spec, error) {
		return navtree.Spec{}, &navtree.MalformedTreeError{
			Path:   path,
			Reason: fmt.Sprintf("line %d: ", v.Line) + fmt.Sprintf(format, args...),
		}
	}

	if v.Kind != KindArray {
		return fail("expected record, got %s", v.Kind)
	}
	if len(v.Items) == 0 || v.Items[0].Kind != KindString || v.Items[0].Str == "" {
		return fail("record has no title")
	}

	spec := navtree.Spec{Title: v.Items[0].Str}
	if len(v.Items) > 1 {
		switch link := v.Items[1]; link.Kind {
		case KindString:
			spec.Link = link.Str
		case KindNull:
		default:
			return fail("record %q has a %s link", spec.Title, link.Kind)
		}
	}
	if len(v.Items) > 2 {
		switch children := v.Items[2]; children.Kind {
		case KindNull:
		case KindString:
			spec.Sentinel = children.Str
		case KindArray:
			kids, err := records(children, path)
			if err != nil {
				return navtree.Spec{}, err
			}
			spec.Children = kids
		default:
			return fail("record %q has %s children", spec.Title, children.Kind)
		}
	}
	return spec, nil
}

// Strings decodes an array of strings.
func Strings(v Value) ([]string, error) {
	if v.Kind != KindArray {
		return nil, fmt.Errorf("line %d: expected array of strings, got %s", v.Line, v.Kind)
	}
	out := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind != KindString {
			return nil, fmt.Errorf("line %d: expected string, got %s", item.Line, item.Kind)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

// IndexChunk decodes a page index object mapping page ids to child-index
// paths, e.g. {"annotated.html":[2,0], "index.html":[]}.
func IndexChunk(v Value) (map[string][]int, error) {
	if v.Kind != KindObject {
		return nil, fmt.Errorf("line %d: expected index object, got %s", v.Line, v.Kind)
	}
	out := make(map[string][]int, len(v.Fields))
	for _, field := range v.Fields {
		if field.Value.Kind != KindArray {
			return nil, fmt.Errorf("line %d: index entry %q is %s, want array", field.Value.Line, field.Key, field.Value.Kind)
		}
		path := make([]int, 0, len(field.Value.Items))
		for _, item := range field.Value.Items {
			n, err := item.Int()
			if err != nil {
				return nil, fmt.Errorf("index entry %q: %w", field.Key, err)
			}
			path = append(path, n)
		}
		if _, dup := out[field.Key]; !dup {
			out[field.Key] = path
		}
	}
	return out, nil
}
