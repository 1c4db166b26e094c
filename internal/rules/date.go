// internal/rules/date.go
package rules

import (
	"strings"
	"time"

	"github.com/solatis/jsoncond/internal/types"
)

func (e *evaluator) evalDate(rule *types.DateRule, current any) (Result, error) {
	field := ResolveField(rule.Field, current)
	if !field.Found || field.Value == nil || field.Value == "" {
		return Result{}, types.Malformed("%s is null or undefined", rule.Field)
	}
	fieldDate, err := ParseInstant(field.Value, time.UTC)
	if err != nil {
		return Result{}, types.Malformed("%s is not a valid date: %v", rule.Field, field.Value)
	}
	zone := fieldDate.Zone()
	t := fieldDate.Time

	fail := func(text string) Result {
		if rule.Error != "" {
			return Fail(rule.Error)
		}
		return Fail(rule.Field + " " + text)
	}

	switch op := rule.DateOperator; op {
	case types.DateBefore, types.DateAfter, types.DateOnOrBefore, types.DateOnOrAfter:
		cmp, err := e.comparisonDate(rule, current, zone)
		if err != nil {
			return Result{}, err
		}
		c := cmp.Time
		switch op {
		case types.DateBefore:
			if t.Before(c) {
				return Pass(), nil
			}
			return fail("must be before " + cmp.Format(zone)), nil
		case types.DateAfter:
			if t.After(c) {
				return Pass(), nil
			}
			return fail("must be after " + cmp.Format(zone)), nil
		case types.DateOnOrBefore:
			if !t.After(c) {
				return Pass(), nil
			}
			return fail("must be on or before " + cmp.Format(zone)), nil
		default:
			if !t.Before(c) {
				return Pass(), nil
			}
			return fail("must be on or after " + cmp.Format(zone)), nil
		}

	case types.DateBetween, types.DateNotBetween:
		start, end, err := e.rangeDates(rule, current, zone)
		if err != nil {
			return Result{}, err
		}
		inside := !t.Before(start.Time) && !t.After(end.Time)
		bounds := start.Format(zone) + " and " + end.Format(zone)
		if op == types.DateBetween {
			if inside {
				return Pass(), nil
			}
			return fail("must be between " + bounds), nil
		}
		if !inside {
			return Pass(), nil
		}
		return fail("must not be between " + bounds), nil

	case types.DateDayIn, types.DateDayNotIn:
		days, err := dayNames(op, rule.Value)
		if err != nil {
			return Result{}, err
		}
		day := fieldDate.Weekday(zone)
		listed := false
		for _, d := range days {
			if d == day {
				listed = true
				break
			}
		}
		joined := strings.Join(days, " or ")
		if op == types.DateDayIn {
			if listed {
				return Pass(), nil
			}
			return fail("must be on " + joined), nil
		}
		if !listed {
			return Pass(), nil
		}
		return fail("must not be on " + joined), nil

	default:
		return Result{}, types.Malformed("Unknown date operator: %s", op)
	}
}

// comparisonDate resolves the single operand of an ordering operator.
func (e *evaluator) comparisonDate(rule *types.DateRule, current any, zone *time.Location) (Instant, error) {
	var raw ResolveResult
	switch {
	case rule.Value.Set:
		raw = ResolveResult{Value: rule.Value.Value, Found: true}
	case rule.Path != "":
		raw = ResolveScoped(rule.Path, current, e.root)
	default:
		return Instant{}, types.Malformed("No value or path specified for date comparison")
	}
	if !raw.Found {
		return Instant{}, types.Malformed("Invalid comparison date: undefined")
	}
	cmp, err := ParseInstant(raw.Value, zone)
	if err != nil {
		return Instant{}, types.Malformed("Invalid comparison date: %v", raw.Value)
	}
	return cmp, nil
}

// rangeDates resolves the [start, end] operand. Each bound is inferred in
// the field's zone independently.
func (e *evaluator) rangeDates(rule *types.DateRule, current any, zone *time.Location) (Instant, Instant, error) {
	raw := ResolveResult{Value: rule.Value.Value, Found: rule.Value.Set}
	if !rule.Value.Set && rule.Path != "" {
		raw = ResolveScoped(rule.Path, current, e.root)
	}
	bounds, ok := asSlice(raw.Value)
	if !raw.Found || !ok || len(bounds) != 2 {
		return Instant{}, Instant{}, types.Malformed("%s operator requires an array of two dates", rule.DateOperator)
	}
	start, err := ParseInstant(bounds[0], zone)
	if err != nil {
		return Instant{}, Instant{}, types.Malformed("Invalid start date: %v", bounds[0])
	}
	end, err := ParseInstant(bounds[1], zone)
	if err != nil {
		return Instant{}, Instant{}, types.Malformed("Invalid end date: %v", bounds[1])
	}
	return start, end, nil
}

// dayNames validates and folds a day-name list.
func dayNames(op types.DateOperator, value types.Operand) ([]string, error) {
	list, ok := asSlice(value.Value)
	if !value.Set || !ok {
		return nil, types.Malformed("%s operator requires an array of day names", op)
	}
	days := make([]string, 0, len(list))
	for _, raw := range list {
		name, isStr := raw.(string)
		if !isStr {
			return nil, types.Malformed("%s operator requires an array of day names", op)
		}
		folded, known := FoldDayName(name)
		if !known {
			return nil, types.Malformed("Unknown day name: %s", name)
		}
		days = append(days, folded)
	}
	return days, nil
}
