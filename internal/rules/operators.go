// internal/rules/operators.go
package rules

import (
	"reflect"
	"strings"
)

/*
 * Value comparison helpers for field operators.
 *
 * Supported type pairs per operator family (anything else is a Fail, never
 * an error):
 *   - equal/notEqual: any pair; numbers compare numerically across Go
 *     numeric types, everything else requires identical dynamic type and
 *     deep value equality.
 *   - lessThan/.../between: number with number, string with string
 *     (lexicographic byte order).
 *   - in/notIn: any field value against a sequence operand.
 *   - contains/notContains: sequence field (membership) or string field with
 *     string operand (substring).
 *   - startsWith/endsWith/match: string field with string operand.
 *   - isEmpty/notEmpty: absent, null, "", empty sequence, empty object are
 *     empty; everything else is non-empty.
 *
 * Numeric handling: float64/int/int64 and the rest of Go's numeric kinds
 * are widened to float64, matching encoding/json output.
 */

// valuesEqual performs strict equality with numeric widening.
func valuesEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := asSlice(b)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, found := bv[k]
			if !found || !valuesEqual(elem, other) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// compareOrdered performs three-way comparison for mutually ordered types.
// ok is false for incomparable pairs.
func compareOrdered(a, b any) (cmp int, ok bool) {
	if na, nb, isNum := asNumbers(a, b); isNum {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

// asNumbers attempts to convert both values to float64 for numeric comparison.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it's a numeric type, including
// named types over Go numeric kinds.
func toFloat64(v any) (float64, bool) {
	if n, ok := v.(float64); ok {
		return n, true
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// memberOf reports whether value equals any element of set. A non-sequence
// set has no members.
func memberOf(value ResolveResult, set any) bool {
	if !value.Found {
		return false
	}
	elems, ok := asSlice(set)
	if !ok {
		return false
	}
	for _, elem := range elems {
		if valuesEqual(value.Value, elem) {
			return true
		}
	}
	return false
}

// containsValue implements contains: sequence membership or substring.
// Returns false for every other field type, including absent and null.
func containsValue(field ResolveResult, operand any) bool {
	if !field.Found {
		return false
	}
	if s, ok := field.Value.(string); ok {
		sub, isStr := operand.(string)
		return isStr && strings.Contains(s, sub)
	}
	elems, ok := asSlice(field.Value)
	if !ok {
		return false
	}
	for _, elem := range elems {
		if valuesEqual(elem, operand) {
			return true
		}
	}
	return false
}

// comparePrefix checks if value starts with prefix (both must be strings).
func comparePrefix(value, prefix any) bool {
	vs, ok1 := value.(string)
	ps, ok2 := prefix.(string)
	if !ok1 || !ok2 {
		return false
	}
	return strings.HasPrefix(vs, ps)
}

// compareSuffix checks if value ends with suffix (both must be strings).
func compareSuffix(value, suffix any) bool {
	vs, ok1 := value.(string)
	ss, ok2 := suffix.(string)
	if !ok1 || !ok2 {
		return false
	}
	return strings.HasSuffix(vs, ss)
}

// isEmptyValue implements polymorphic emptiness.
func isEmptyValue(field ResolveResult) bool {
	if !field.Found || field.Value == nil {
		return true
	}
	switch v := field.Value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(field.Value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}
