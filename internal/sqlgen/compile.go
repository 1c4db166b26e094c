// internal/sqlgen/compile.go
package sqlgen

import (
	"strconv"

	"github.com/solatis/jsoncond/internal/types"
)

/*
 * Condition to PostgreSQL predicate compilation.
 *
 * Compile walks the same condition tree the evaluator consumes and emits a
 * boolean SQL fragment plus positional parameters ($1, $2, ...). The
 * parameter counter lives in a builder scoped to one Compile call, so no
 * state is shared between calls or goroutines.
 *
 * Divergences from in-memory evaluation:
 *   - equal/notEqual against null compile to IS NULL / IS NOT NULL.
 *   - in/notIn against an empty or non-list operand compile to FALSE / TRUE.
 *   - contains/startsWith/endsWith compile to LIKE with \ % _ escaped.
 *   - match/notMatch compile to the POSIX operators ~ and !~.
 *   - isEmpty/notEmpty only consider NULL and the empty string.
 *   - element quantifiers (all, any, none, atLeast, atMost, exactly) cannot
 *     be expressed as one predicate and fail with ErrUnsupportedInSQL.
 *   - date operands are bound verbatim; offset inference is left to the
 *     database.
 *
 * The returned fragment is meant to follow WHERE; callers bind Params
 * positionally.
 */

// Predicate is a compiled SQL boolean fragment with its bound parameters.
type Predicate struct {
	SQL    string
	Params []any
}

// Where renders the predicate as a WHERE clause.
func (p Predicate) Where() string {
	return "WHERE " + p.SQL
}

// Compiler holds compile-time defaults.
type Compiler struct {
	// DefaultArrayType applies to array rules that do not set arrayType.
	// Zero means JSONArray.
	DefaultArrayType types.ArrayRepresentation
}

// Compile converts cond into a predicate using default settings.
func Compile(cond types.Condition) (Predicate, error) {
	return Compiler{}.Compile(cond)
}

// Compile converts cond into a predicate.
func (c Compiler) Compile(cond types.Condition) (Predicate, error) {
	b := &builder{arrayType: c.DefaultArrayType}
	if b.arrayType == "" {
		b.arrayType = types.JSONArray
	}
	sql, err := b.build(cond)
	if err != nil {
		return Predicate{}, err
	}
	if b.params == nil {
		b.params = []any{}
	}
	return Predicate{SQL: sql, Params: b.params}, nil
}

// builder accumulates parameters for one compilation.
type builder struct {
	params    []any
	arrayType types.ArrayRepresentation
}

// next binds value and returns its placeholder.
func (b *builder) next(value any) string {
	b.params = append(b.params, value)
	return "$" + strconv.Itoa(len(b.params))
}

func (b *builder) build(cond types.Condition) (string, error) {
	switch c := cond.(type) {
	case types.Boolean:
		if c {
			return "TRUE", nil
		}
		return "FALSE", nil
	case *types.FieldRule:
		return b.buildField(c)
	case *types.DateRule:
		return b.buildDate(c)
	case *types.ArrayRule:
		return b.buildArray(c)
	case *types.All:
		return b.buildGroup(c.Conditions, " AND ", "TRUE")
	case *types.Any:
		return b.buildGroup(c.Conditions, " OR ", "FALSE")
	case *types.IfThenElse:
		return b.buildIfThenElse(c)
	case nil:
		return "", types.Malformed("missing condition")
	default:
		return "", types.Malformed("unknown condition type %T", cond)
	}
}
