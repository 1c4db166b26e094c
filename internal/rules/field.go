// internal/rules/field.go
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/solatis/jsoncond/internal/types"
)

// operatorText is the default failure phrase per field operator.
var operatorText = map[types.FieldOperator]string{
	types.OpEqual:            "must equal",
	types.OpNotEqual:         "must not equal",
	types.OpLessThan:         "must be less than",
	types.OpLessThanEqual:    "must be less than or equal to",
	types.OpGreaterThan:      "must be greater than",
	types.OpGreaterThanEqual: "must be greater than or equal to",
	types.OpIn:               "must be one of",
	types.OpNotIn:            "must not be one of",
	types.OpContains:         "must contain",
	types.OpNotContains:      "must not contain",
	types.OpStartsWith:       "must start with",
	types.OpEndsWith:         "must end with",
	types.OpMatch:            "must match pattern",
	types.OpNotMatch:         "must not match pattern",
	types.OpBetween:          "must be between",
	types.OpNotBetween:       "must not be between",
	types.OpIsEmpty:          "must be empty",
	types.OpNotEmpty:         "must not be empty",
	types.OpExists:           "must exist",
	types.OpNotExists:        "must not exist",
}

func (e *evaluator) evalField(rule *types.FieldRule, current any) (Result, error) {
	text, ok := operatorText[rule.Operator]
	if !ok {
		return Result{}, types.Malformed("Unknown operator: %s", rule.Operator)
	}

	field := ResolveField(rule.Field, current)

	var operand ResolveResult
	if rule.Operator.NeedsValue() {
		var err error
		operand, err = resolveOperand(rule.Value, rule.Path, current, e.root)
		if err != nil {
			return Result{}, err
		}
	}

	passed, err := applyFieldOperator(rule.Operator, field, operand)
	if err != nil {
		return Result{}, err
	}
	if passed {
		return Pass(), nil
	}
	if rule.Error != "" {
		return Fail(rule.Error), nil
	}
	msg := rule.Field + " " + text
	if rule.Operator.NeedsValue() {
		msg += " " + formatOperand(operand)
	}
	return Fail(msg), nil
}

// resolveOperand picks the literal when supplied (null included), otherwise
// the scoped path.
func resolveOperand(value types.Operand, path string, current, root any) (ResolveResult, error) {
	if value.Set {
		return ResolveResult{Value: value.Value, Found: true}, nil
	}
	if path != "" {
		return ResolveScoped(path, current, root), nil
	}
	return ResolveResult{}, types.Malformed("No value or path specified")
}

func applyFieldOperator(op types.FieldOperator, field, operand ResolveResult) (bool, error) {
	switch op {
	case types.OpEqual:
		return fieldEquals(field, operand), nil
	case types.OpNotEqual:
		return !fieldEquals(field, operand), nil
	case types.OpLessThan:
		cmp, ok := orderField(field, operand)
		return ok && cmp < 0, nil
	case types.OpLessThanEqual:
		cmp, ok := orderField(field, operand)
		return ok && cmp <= 0, nil
	case types.OpGreaterThan:
		cmp, ok := orderField(field, operand)
		return ok && cmp > 0, nil
	case types.OpGreaterThanEqual:
		cmp, ok := orderField(field, operand)
		return ok && cmp >= 0, nil
	case types.OpIn:
		return memberOf(field, operand.Value), nil
	case types.OpNotIn:
		return !memberOf(field, operand.Value), nil
	case types.OpContains:
		return operand.Found && containsValue(field, operand.Value), nil
	case types.OpNotContains:
		return !(operand.Found && containsValue(field, operand.Value)), nil
	case types.OpStartsWith:
		return field.Found && comparePrefix(field.Value, operand.Value), nil
	case types.OpEndsWith:
		return field.Found && compareSuffix(field.Value, operand.Value), nil
	case types.OpMatch, types.OpNotMatch:
		re, err := compilePattern(op, operand)
		if err != nil {
			return false, err
		}
		s, isStr := field.Value.(string)
		matched := field.Found && isStr && re.MatchString(s)
		if op == types.OpMatch {
			return matched, nil
		}
		return !matched, nil
	case types.OpBetween, types.OpNotBetween:
		bounds, ok := asSlice(operand.Value)
		if !operand.Found || !ok || len(bounds) != 2 {
			return false, types.Malformed("%s operator requires an array of two values", op)
		}
		if !field.Found {
			return false, nil
		}
		lo, okLo := compareOrdered(field.Value, bounds[0])
		hi, okHi := compareOrdered(field.Value, bounds[1])
		if op == types.OpBetween {
			return okLo && okHi && lo >= 0 && hi <= 0, nil
		}
		return (okLo && lo < 0) || (okHi && hi > 0), nil
	case types.OpIsEmpty:
		return isEmptyValue(field), nil
	case types.OpNotEmpty:
		return !isEmptyValue(field), nil
	case types.OpExists:
		return field.Found, nil
	case types.OpNotExists:
		return !field.Found, nil
	default:
		return false, types.Malformed("Unknown operator: %s", op)
	}
}

// fieldEquals treats two absent sides as equal and absent vs present as
// unequal, so equal-to-null requires a present null.
func fieldEquals(field, operand ResolveResult) bool {
	if field.Found != operand.Found {
		return false
	}
	return !field.Found || valuesEqual(field.Value, operand.Value)
}

func orderField(field, operand ResolveResult) (int, bool) {
	if !field.Found || !operand.Found {
		return 0, false
	}
	return compareOrdered(field.Value, operand.Value)
}

// compilePattern accepts a pattern string or a precompiled *regexp.Regexp.
func compilePattern(op types.FieldOperator, operand ResolveResult) (*regexp.Regexp, error) {
	switch p := operand.Value.(type) {
	case *regexp.Regexp:
		if p != nil {
			return p, nil
		}
	case string:
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, types.Malformed("%s operator has invalid pattern %q: %v", op, p, err)
		}
		return re, nil
	}
	return nil, types.Malformed("%s operator requires a string pattern", op)
}

// formatOperand renders an operand as compact JSON for default messages.
func formatOperand(operand ResolveResult) string {
	if !operand.Found {
		return "undefined"
	}
	v := operand.Value
	if re, ok := v.(*regexp.Regexp); ok && re != nil {
		v = re.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
