// internal/rules/evaluate.go
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/solatis/jsoncond/internal/types"
)

/*
 * Condition evaluation entry point.
 *
 * Check walks a condition tree against decoded data and returns a Result on
 * the validation channel or an error on the malformed-rule channel:
 *
 *   Result{Passed: true}           condition holds
 *   Result{Message: "..."}         condition failed, with a description
 *   Result{}                       bare false literal (fails, no description)
 *
 * Errors wrap types.ErrMalformedRule and abort the whole evaluation. They are
 * never folded into a failure message.
 *
 * The root context is fixed per call; the current element changes only while
 * an array quantifier evaluates its sub-condition against each element.
 * Evaluation holds no state beyond the call and is safe for concurrent use
 * with shared trees.
 */

// Result is the outcome of evaluating a condition.
type Result struct {
	Passed  bool
	Message string
}

// Pass returns a passing result.
func Pass() Result {
	return Result{Passed: true}
}

// Fail returns a failing result carrying msg.
func Fail(msg string) Result {
	return Result{Message: msg}
}

// Failed reports whether the result is a described failure.
func (r Result) Failed() bool {
	return !r.Passed && r.Message != ""
}

// String renders the result as "true", the failure message, or "false" for
// an undescribed failure.
func (r Result) String() string {
	switch {
	case r.Passed:
		return "true"
	case r.Message != "":
		return r.Message
	default:
		return "false"
	}
}

// evaluator carries the per-call root context.
type evaluator struct {
	root any
}

// Check evaluates cond against data. data is both the root context and the
// initial current element.
func Check(cond types.Condition, data any) (Result, error) {
	e := &evaluator{root: data}
	return e.eval(cond, data)
}

// CheckJSON decodes payload and evaluates cond against it.
func CheckJSON(cond types.Condition, payload json.RawMessage) (Result, error) {
	var data any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			return Result{}, fmt.Errorf("invalid data JSON: %w", err)
		}
	}
	return Check(cond, data)
}

// eval routes a node to its evaluator.
func (e *evaluator) eval(cond types.Condition, current any) (Result, error) {
	switch c := cond.(type) {
	case types.Boolean:
		if c {
			return Pass(), nil
		}
		return Result{}, nil
	case *types.FieldRule:
		return e.evalField(c, current)
	case *types.ArrayRule:
		return e.evalArray(c, current)
	case *types.DateRule:
		return e.evalDate(c, current)
	case *types.All:
		return e.evalAll(c, current)
	case *types.Any:
		return e.evalAny(c, current)
	case *types.IfThenElse:
		return e.evalIfThenElse(c, current)
	case nil:
		return Result{}, types.Malformed("missing condition")
	default:
		return Result{}, types.Malformed("unknown condition type %T", cond)
	}
}
