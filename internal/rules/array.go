// internal/rules/array.go
package rules

import (
	"fmt"

	"github.com/solatis/jsoncond/internal/types"
)

/*
 * Array quantifiers.
 *
 * Each element becomes the current element for the sub-condition while the
 * root context is unchanged, so "$.qty" reads the element and "limits.qty"
 * reads the top-level input. Per-element results are classified as match
 * (Passed), failure (described Fail) or unclassified (bare false). "all"
 * needs every element to match; the count in its message is the number of
 * described failures.
 *
 * Quantifying over a non-empty sequence of primitives is a malformed rule:
 * element conditions address fields, so "in"/"contains" on the field itself
 * is the supported form. Empty sequences are quantified vacuously.
 */

func (e *evaluator) evalArray(rule *types.ArrayRule, current any) (Result, error) {
	resolved := ResolveField(rule.Field, current)
	elems, ok := asSlice(resolved.Value)
	if !resolved.Found || !ok {
		return Result{}, types.Malformed("%s must be an array", rule.Field)
	}

	op := rule.ArrayOperator
	if op.NeedsCondition() && rule.Condition == nil {
		return Result{}, types.Malformed("%s requires a condition to check against array elements", op)
	}
	if op.NeedsCount() && rule.Count == nil {
		return Result{}, types.Malformed("%s requires a count", op)
	}

	fail := func(text string) Result {
		if rule.Error != "" {
			return Fail(rule.Error)
		}
		return Fail(rule.Field + " " + text)
	}

	matches, failures := 0, 0
	if op.NeedsCondition() {
		if len(elems) > 0 && !anyStructured(elems) {
			return Result{}, types.Malformed("%s contains only primitive values. Use 'in' or 'contains' operators instead of array operators for primitive arrays", rule.Field)
		}
		for _, elem := range elems {
			r, err := e.eval(rule.Condition, elem)
			if err != nil {
				return Result{}, err
			}
			switch {
			case r.Passed:
				matches++
			case r.Failed():
				failures++
			}
		}
	}

	var passed bool
	var text string
	switch op {
	case types.ArrayEmpty:
		passed, text = len(elems) == 0, "must be empty"
	case types.ArrayNotEmpty:
		passed, text = len(elems) > 0, "must not be empty"
	case types.ArrayAll:
		passed, text = matches == len(elems), fmt.Sprintf("all elements must match (%d failed)", failures)
	case types.ArrayAny:
		passed, text = matches > 0, "at least one element must match"
	case types.ArrayNone:
		passed, text = matches == 0, fmt.Sprintf("no elements should match (%d matched)", matches)
	case types.ArrayAtLeast:
		passed, text = matches >= *rule.Count, fmt.Sprintf("at least %d elements must match (%d matched)", *rule.Count, matches)
	case types.ArrayAtMost:
		passed, text = matches <= *rule.Count, fmt.Sprintf("at most %d elements must match (%d matched)", *rule.Count, matches)
	case types.ArrayExactly:
		passed, text = matches == *rule.Count, fmt.Sprintf("exactly %d elements must match (%d matched)", *rule.Count, matches)
	default:
		return Result{}, types.Malformed("Unknown array operator: %s", op)
	}

	if passed {
		return Pass(), nil
	}
	return fail(text), nil
}

func anyStructured(elems []any) bool {
	for _, elem := range elems {
		if isStructured(elem) {
			return true
		}
	}
	return false
}
