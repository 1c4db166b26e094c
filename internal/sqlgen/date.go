// internal/sqlgen/date.go
package sqlgen

import (
	"github.com/solatis/jsoncond/internal/rules"
	"github.com/solatis/jsoncond/internal/types"
)

var dateComparisonSQL = map[types.DateOperator]string{
	types.DateBefore:     "<",
	types.DateAfter:      ">",
	types.DateOnOrBefore: "<=",
	types.DateOnOrAfter:  ">=",
}

func (b *builder) buildDate(rule *types.DateRule) (string, error) {
	field := fieldExpr(rule.Field, false)

	switch op := rule.DateOperator; op {
	case types.DateBefore, types.DateAfter, types.DateOnOrBefore, types.DateOnOrAfter:
		switch {
		case rule.Value.Set:
			return field + " " + dateComparisonSQL[op] + " " + b.next(rule.Value.Value), nil
		case rule.Path != "":
			return field + " " + dateComparisonSQL[op] + " " + fieldExpr(rule.Path, false), nil
		default:
			return "", types.Malformed("No value or path specified for date comparison")
		}

	case types.DateBetween, types.DateNotBetween:
		bounds, ok := asList(rule.Value.Value)
		if !rule.Value.Set || !ok || len(bounds) != 2 {
			return "", types.Malformed("%s date operator requires an array of two values", op)
		}
		keyword := " BETWEEN "
		if op == types.DateNotBetween {
			keyword = " NOT BETWEEN "
		}
		lo := b.next(bounds[0])
		hi := b.next(bounds[1])
		return field + keyword + lo + " AND " + hi, nil

	case types.DateDayIn, types.DateDayNotIn:
		days, err := dayNumbers(op, rule.Value)
		if err != nil {
			return "", err
		}
		if op == types.DateDayIn {
			return "EXTRACT(DOW FROM " + field + ") = ANY(" + b.next(days) + ")", nil
		}
		return "EXTRACT(DOW FROM " + field + ") <> ALL(" + b.next(days) + ")", nil

	default:
		return "", types.Malformed("Unknown date operator: %s", op)
	}
}

// dayNumbers maps day names to EXTRACT(DOW) values, sunday being 0.
func dayNumbers(op types.DateOperator, value types.Operand) ([]int64, error) {
	list, ok := asList(value.Value)
	if !value.Set || !ok {
		return nil, types.Malformed("%s operator requires an array of day names", op)
	}
	days := make([]int64, 0, len(list))
	for _, raw := range list {
		name, isStr := raw.(string)
		if !isStr {
			return nil, types.Malformed("%s operator requires an array of day names", op)
		}
		n, known := rules.DayNumber(name)
		if !known {
			return nil, types.Malformed("Unknown day name: %s", name)
		}
		days = append(days, int64(n))
	}
	return days, nil
}
