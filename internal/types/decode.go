// internal/types/decode.go
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

/*
 * Condition decoding.
 *
 * Converts generic decoded documents (encoding/json, yaml.v3, structpb
 * AsMap output) into the sealed Condition model. Each object node must carry
 * exactly one variant tag:
 *
 *   all           -> *All
 *   any           -> *Any
 *   if            -> *IfThenElse
 *   arrayOperator -> *ArrayRule
 *   dateOperator  -> *DateRule
 *   operator      -> *FieldRule
 *
 * Nodes with no tag, several tags, unknown operator names or wrongly typed
 * keys are rejected here with ErrMalformedRule. Operand arity (between,
 * dayIn) and quantifier requirements (condition, count) are checked by the
 * backends at evaluation time so each reports them in its own terms.
 *
 * Numbers are normalized to float64 so YAML integers and JSON numbers
 * compare identically.
 */

var variantTags = []string{"all", "any", "if", "arrayOperator", "dateOperator", "operator"}

// Parse decodes a JSON condition document.
func Parse(data []byte) (Condition, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid condition JSON: %w", err)
	}
	return FromValue(raw)
}

// ParseYAML decodes a YAML condition document.
func ParseYAML(data []byte) (Condition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid condition YAML: %w", err)
	}
	return FromValue(raw)
}

// FromValue decodes an already-parsed generic document.
func FromValue(v any) (Condition, error) {
	return decodeNode(Normalize(v), "$")
}

// Normalize converts Go numeric types to float64 and YAML-style
// map[any]any to map[string]any, recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = Normalize(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = Normalize(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(k)] = Normalize(elem)
		}
		return out
	default:
		return v
	}
}

func decodeNode(v any, loc string) (Condition, error) {
	switch t := v.(type) {
	case bool:
		return Boolean(t), nil
	case map[string]any:
		return decodeObject(t, loc)
	default:
		return nil, Malformed("%s: condition must be a boolean or an object, got %s", loc, describe(v))
	}
}

func decodeObject(m map[string]any, loc string) (Condition, error) {
	var tags []string
	for _, tag := range variantTags {
		if _, ok := m[tag]; ok {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, Malformed("%s: object with keys [%s] matches no condition variant", loc, strings.Join(keys, ", "))
	}
	if len(tags) > 1 {
		return nil, Malformed("%s: ambiguous condition with keys [%s]", loc, strings.Join(tags, ", "))
	}

	switch tags[0] {
	case "all":
		conds, errMsg, err := decodeGroup(m, "all", loc)
		if err != nil {
			return nil, err
		}
		return &All{Conditions: conds, Error: errMsg}, nil
	case "any":
		conds, errMsg, err := decodeGroup(m, "any", loc)
		if err != nil {
			return nil, err
		}
		return &Any{Conditions: conds, Error: errMsg}, nil
	case "if":
		return decodeIfThenElse(m, loc)
	case "arrayOperator":
		return decodeArrayRule(m, loc)
	case "dateOperator":
		return decodeDateRule(m, loc)
	default:
		return decodeFieldRule(m, loc)
	}
}

func decodeGroup(m map[string]any, key, loc string) ([]Condition, string, error) {
	list, ok := m[key].([]any)
	if !ok {
		return nil, "", Malformed("%s.%s must be a list of conditions, got %s", loc, key, describe(m[key]))
	}
	conds := make([]Condition, 0, len(list))
	for i, elem := range list {
		c, err := decodeNode(elem, fmt.Sprintf("%s.%s[%d]", loc, key, i))
		if err != nil {
			return nil, "", err
		}
		conds = append(conds, c)
	}
	errMsg, err := optionalString(m, "error", loc)
	if err != nil {
		return nil, "", err
	}
	return conds, errMsg, nil
}

func decodeIfThenElse(m map[string]any, loc string) (Condition, error) {
	ifCond, err := decodeNode(m["if"], loc+".if")
	if err != nil {
		return nil, err
	}
	thenRaw, ok := m["then"]
	if !ok {
		return nil, Malformed("%s: if requires then", loc)
	}
	thenCond, err := decodeNode(thenRaw, loc+".then")
	if err != nil {
		return nil, err
	}
	node := &IfThenElse{If: ifCond, Then: thenCond}
	if elseRaw, ok := m["else"]; ok {
		elseCond, err := decodeNode(elseRaw, loc+".else")
		if err != nil {
			return nil, err
		}
		node.Else = elseCond
	}
	return node, nil
}

func decodeFieldRule(m map[string]any, loc string) (Condition, error) {
	field, err := requiredString(m, "field", loc)
	if err != nil {
		return nil, err
	}
	opName, err := requiredString(m, "operator", loc)
	if err != nil {
		return nil, err
	}
	op := FieldOperator(opName)
	if !op.Valid() {
		return nil, Malformed("%s: Unknown operator: %s", loc, opName)
	}
	rule := &FieldRule{Field: field, Operator: op}
	if v, ok := m["value"]; ok {
		rule.Value = Literal(v)
	}
	if rule.Path, err = optionalString(m, "path", loc); err != nil {
		return nil, err
	}
	if rule.Error, err = optionalString(m, "error", loc); err != nil {
		return nil, err
	}
	return rule, nil
}

func decodeDateRule(m map[string]any, loc string) (Condition, error) {
	field, err := requiredString(m, "field", loc)
	if err != nil {
		return nil, err
	}
	opName, err := requiredString(m, "dateOperator", loc)
	if err != nil {
		return nil, err
	}
	op := DateOperator(opName)
	if !op.Valid() {
		return nil, Malformed("%s: Unknown date operator: %s", loc, opName)
	}
	rule := &DateRule{Field: field, DateOperator: op}
	if v, ok := m["value"]; ok {
		rule.Value = Literal(v)
	}
	if rule.Path, err = optionalString(m, "path", loc); err != nil {
		return nil, err
	}
	if rule.Error, err = optionalString(m, "error", loc); err != nil {
		return nil, err
	}
	return rule, nil
}

func decodeArrayRule(m map[string]any, loc string) (Condition, error) {
	field, err := requiredString(m, "field", loc)
	if err != nil {
		return nil, err
	}
	opName, err := requiredString(m, "arrayOperator", loc)
	if err != nil {
		return nil, err
	}
	op := ArrayOperator(opName)
	if !op.Valid() {
		return nil, Malformed("%s: Unknown array operator: %s", loc, opName)
	}
	rule := &ArrayRule{Field: field, ArrayOperator: op}

	arrayType, err := optionalString(m, "arrayType", loc)
	if err != nil {
		return nil, err
	}
	// Absent arrayType stays empty so the compiler's default applies
	switch ArrayRepresentation(arrayType) {
	case "", JSONArray, NativeArray:
		rule.ArrayType = ArrayRepresentation(arrayType)
	default:
		return nil, Malformed("%s: arrayType must be %q or %q, got %q", loc, JSONArray, NativeArray, arrayType)
	}

	if raw, ok := m["condition"]; ok {
		cond, err := decodeNode(raw, loc+".condition")
		if err != nil {
			return nil, err
		}
		rule.Condition = cond
	}
	if raw, ok := m["count"]; ok {
		f, isNum := raw.(float64)
		if !isNum || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return nil, Malformed("%s: count must be a non-negative integer, got %s", loc, describe(raw))
		}
		n := int(f)
		rule.Count = &n
	}
	if rule.Error, err = optionalString(m, "error", loc); err != nil {
		return nil, err
	}
	return rule, nil
}

func requiredString(m map[string]any, key, loc string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", Malformed("%s: missing %s", loc, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", Malformed("%s: %s must be a string, got %s", loc, key, describe(raw))
	}
	return s, nil
}

func optionalString(m map[string]any, key, loc string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", Malformed("%s: %s must be a string, got %s", loc, key, describe(raw))
	}
	return s, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
