package rules

import (
	"strings"

	"github.com/solatis/jsoncond/internal/types"
)

const (
	allPrefix = "All conditions must pass: "
	anyPrefix = "At least one condition must pass: "
)

// evalAll evaluates every sub-condition. A single failure propagates
// verbatim; several are joined with " AND ". A bare false contributes "false".
func (e *evaluator) evalAll(node *types.All, current any) (Result, error) {
	var failures []string
	for _, cond := range node.Conditions {
		r, err := e.eval(cond, current)
		if err != nil {
			return Result{}, err
		}
		if !r.Passed {
			failures = append(failures, r.String())
		}
	}
	if len(failures) == 0 {
		return Pass(), nil
	}
	return aggregate(node.Error, failures, allPrefix, " AND "), nil
}

// evalAny stops at the first passing sub-condition, left to right.
func (e *evaluator) evalAny(node *types.Any, current any) (Result, error) {
	failures := make([]string, 0, len(node.Conditions))
	for _, cond := range node.Conditions {
		r, err := e.eval(cond, current)
		if err != nil {
			return Result{}, err
		}
		if r.Passed {
			return Pass(), nil
		}
		failures = append(failures, r.String())
	}
	return aggregate(node.Error, failures, anyPrefix, " OR "), nil
}

// evalIfThenElse routes to Then only on an exact pass of If. A failed If is
// "not met", its message is discarded.
func (e *evaluator) evalIfThenElse(node *types.IfThenElse, current any) (Result, error) {
	cond, err := e.eval(node.If, current)
	if err != nil {
		return Result{}, err
	}
	if cond.Passed {
		return e.eval(node.Then, current)
	}
	if node.Else == nil {
		return Pass(), nil
	}
	return e.eval(node.Else, current)
}

func aggregate(custom string, failures []string, prefix, sep string) Result {
	if custom != "" {
		return Fail(custom)
	}
	if len(failures) == 1 {
		return Fail(failures[0])
	}
	return Fail(prefix + strings.Join(failures, sep))
}
