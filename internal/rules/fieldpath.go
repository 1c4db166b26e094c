// internal/rules/fieldpath.go
package rules

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/solatis/jsoncond/internal/types"
)

/*
 * Field path resolution for decoded documents.
 *
 * Resolves dotted paths ("user.address.city", "items.0.sku", "items[0].sku")
 * through nested maps and slices. Numeric segments index slices and also
 * match object keys spelled the same way.
 *
 * Scoping: a path beginning with "$." resolves against the current element;
 * any other comparison path resolves against the root context. During array
 * quantification the current element is the array element while the root
 * context stays the top-level input.
 *
 * Absent vs null: a missing key, an out-of-range index, or traversal through
 * a scalar or null yields Found=false. A key present with a null value yields
 * Found=true, Value=nil.
 */

// CurrentElementPrefix forces resolution against the current element.
const CurrentElementPrefix = "$."

// ResolveResult contains the resolved value and whether the path exists.
type ResolveResult struct {
	Value any  // resolved value (nil if not found or null)
	Found bool // true if path resolved to a value, including null
}

// ParsePath splits a dotted path into segments. Bracketed indices are
// rewritten as ordinary segments, so "a[0].b" equals "a.0.b".
func ParsePath(path string) []types.PathSegment {
	if path == "" {
		return nil
	}
	normalized := strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.Split(normalized, ".")
	segments := make([]types.PathSegment, 0, len(parts))
	for _, p := range parts {
		seg := types.PathSegment{Key: p}
		if n, err := strconv.Atoi(p); err == nil && n >= 0 && p == strconv.Itoa(n) {
			seg.Index = n
			seg.IsIndex = true
		}
		segments = append(segments, seg)
	}
	return segments
}

// Resolve traverses data following a dotted path.
func Resolve(path string, data any) ResolveResult {
	return resolveSegments(ParsePath(path), data)
}

// ResolveScoped resolves a comparison path: "$."-prefixed paths against the
// current element, all others against the root context.
func ResolveScoped(path string, current, root any) ResolveResult {
	if strings.HasPrefix(path, CurrentElementPrefix) {
		return Resolve(strings.TrimPrefix(path, CurrentElementPrefix), current)
	}
	return Resolve(path, root)
}

// ResolveField resolves a rule's field against the current element. A
// redundant "$." prefix is accepted.
func ResolveField(field string, current any) ResolveResult {
	return Resolve(strings.TrimPrefix(field, CurrentElementPrefix), current)
}

func resolveSegments(path []types.PathSegment, current any) ResolveResult {
	if len(path) == 0 {
		return ResolveResult{Value: current, Found: true}
	}
	seg := path[0]
	remaining := path[1:]

	switch v := current.(type) {
	case map[string]any:
		val, ok := v[seg.Key]
		if !ok {
			return ResolveResult{}
		}
		return resolveSegments(remaining, val)

	case []any:
		if !seg.IsIndex || seg.Index >= len(v) {
			return ResolveResult{}
		}
		return resolveSegments(remaining, v[seg.Index])

	case nil:
		// Null at an intermediate position
		return ResolveResult{}

	default:
		return resolveReflect(seg, remaining, current)
	}
}

// resolveReflect handles caller-supplied Go maps, slices, structs and
// pointers to them that are not the generic shapes produced by encoding/json.
// Struct segments match an exported field by its json tag name, or by its Go
// name when untagged.
func resolveReflect(seg types.PathSegment, remaining []types.PathSegment, current any) ResolveResult {
	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ResolveResult{}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		val, ok := structField(rv, seg.Key)
		if !ok {
			return ResolveResult{}
		}
		return resolveSegments(remaining, val.Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return ResolveResult{}
		}
		val := rv.MapIndex(reflect.ValueOf(seg.Key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return ResolveResult{}
		}
		return resolveSegments(remaining, val.Interface())
	case reflect.Slice, reflect.Array:
		if !seg.IsIndex || seg.Index >= rv.Len() {
			return ResolveResult{}
		}
		return resolveSegments(remaining, rv.Index(seg.Index).Interface())
	default:
		// Scalar value but path continues
		return ResolveResult{}
	}
}

func structField(rv reflect.Value, key string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("json")
		if !f.IsExported() || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		if name == key {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// asSlice converts any slice or array value to []any.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isStructured reports whether v is an object or a sequence.
func isStructured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	case nil, string, bool, float64:
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	kind := rv.Kind()
	return kind == reflect.Map || kind == reflect.Slice || kind == reflect.Array || kind == reflect.Struct
}
