// internal/sqlgen/field.go
package sqlgen

import (
	"regexp"

	"github.com/solatis/jsoncond/internal/types"
)

// comparisonSQL maps operators that compile to a plain binary comparison.
var comparisonSQL = map[types.FieldOperator]string{
	types.OpEqual:            "=",
	types.OpNotEqual:         "<>",
	types.OpLessThan:         "<",
	types.OpLessThanEqual:    "<=",
	types.OpGreaterThan:      ">",
	types.OpGreaterThanEqual: ">=",
}

func (b *builder) buildField(rule *types.FieldRule) (string, error) {
	if !rule.Operator.Valid() {
		return "", types.Malformed("Unknown operator: %s", rule.Operator)
	}
	field := fieldExpr(rule.Field, false)

	switch rule.Operator {
	case types.OpIsEmpty:
		return "(" + field + " IS NULL OR " + field + " = '')", nil
	case types.OpNotEmpty:
		return "(" + field + " IS NOT NULL AND " + field + " <> '')", nil
	case types.OpExists:
		return field + " IS NOT NULL", nil
	case types.OpNotExists:
		return field + " IS NULL", nil
	}

	if !rule.Value.Set {
		if rule.Path == "" {
			return "", types.Malformed("No value or path specified")
		}
		return b.buildFieldPath(rule, field)
	}
	value := rule.Value.Value

	switch op := rule.Operator; op {
	case types.OpEqual, types.OpNotEqual:
		if value == nil {
			if op == types.OpEqual {
				return field + " IS NULL", nil
			}
			return field + " IS NOT NULL", nil
		}
		return field + " " + comparisonSQL[op] + " " + b.next(value), nil

	case types.OpLessThan, types.OpLessThanEqual, types.OpGreaterThan, types.OpGreaterThanEqual:
		return field + " " + comparisonSQL[op] + " " + b.next(value), nil

	case types.OpIn:
		list, ok := asList(value)
		if !ok || len(list) == 0 {
			return "FALSE", nil
		}
		return field + " = ANY(" + b.next(list) + ")", nil

	case types.OpNotIn:
		list, ok := asList(value)
		if !ok || len(list) == 0 {
			return "TRUE", nil
		}
		return field + " <> ALL(" + b.next(list) + ")", nil

	case types.OpContains:
		return field + " LIKE " + b.next("%"+escapeLike(stringify(value))+"%"), nil
	case types.OpNotContains:
		return field + " NOT LIKE " + b.next("%"+escapeLike(stringify(value))+"%"), nil
	case types.OpStartsWith:
		return field + " LIKE " + b.next(escapeLike(stringify(value))+"%"), nil
	case types.OpEndsWith:
		return field + " LIKE " + b.next("%"+escapeLike(stringify(value))), nil

	case types.OpMatch, types.OpNotMatch:
		pattern, err := patternText(op, value)
		if err != nil {
			return "", err
		}
		sqlOp := "~"
		if op == types.OpNotMatch {
			sqlOp = "!~"
		}
		return field + " " + sqlOp + " " + b.next(pattern), nil

	case types.OpBetween, types.OpNotBetween:
		bounds, ok := asList(value)
		if !ok || len(bounds) != 2 {
			return "", types.Malformed("%s operator requires an array of two values", op)
		}
		keyword := " BETWEEN "
		if op == types.OpNotBetween {
			keyword = " NOT BETWEEN "
		}
		lo := b.next(bounds[0])
		hi := b.next(bounds[1])
		return field + keyword + lo + " AND " + hi, nil

	default:
		return "", types.Malformed("Unknown operator: %s", op)
	}
}

// buildFieldPath compiles a rule whose operand is another column.
func (b *builder) buildFieldPath(rule *types.FieldRule, field string) (string, error) {
	other := fieldExpr(rule.Path, false)
	switch op := rule.Operator; op {
	case types.OpEqual, types.OpNotEqual, types.OpLessThan, types.OpLessThanEqual, types.OpGreaterThan, types.OpGreaterThanEqual:
		return field + " " + comparisonSQL[op] + " " + other, nil
	case types.OpIn:
		return field + " = ANY(" + other + ")", nil
	case types.OpNotIn:
		return field + " <> ALL(" + other + ")", nil
	case types.OpMatch:
		return field + " ~ " + other, nil
	case types.OpNotMatch:
		return field + " !~ " + other, nil
	default:
		return "", types.Unsupported("%s operator with a path operand is not supported in SQL", op)
	}
}

// patternText extracts the POSIX pattern from a string or compiled regexp.
func patternText(op types.FieldOperator, value any) (string, error) {
	switch p := value.(type) {
	case string:
		return p, nil
	case *regexp.Regexp:
		return p.String(), nil
	default:
		return "", types.Malformed("%s operator requires a string pattern", op)
	}
}
