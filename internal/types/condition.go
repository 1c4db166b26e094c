// internal/types/condition.go
package types

/*
 * Condition tree model.
 *
 * Condition is a closed sum type: Boolean, *FieldRule, *ArrayRule, *DateRule,
 * *All, *Any and *IfThenElse. The unexported marker method seals the set so
 * backends can switch exhaustively on the concrete type. Variant selection
 * happens once, in FromValue, never by sniffing keys during evaluation.
 *
 * Operand distinguishes an absent value from a present null: FieldRule.Value
 * with Set=true and Value=nil is "compare against null", while Set=false means
 * "fall back to Path".
 *
 * Trees are immutable after construction and hold no backend state. They must
 * be finite and acyclic; evaluation recurses without cycle detection.
 */

// Condition is a node in a rule tree.
type Condition interface {
	conditionNode()
}

// Operand is an optional literal. Set reports whether the literal was
// supplied at all; a supplied null has Set=true and Value=nil.
type Operand struct {
	Value any
	Set   bool
}

// Literal returns a supplied operand.
func Literal(v any) Operand {
	return Operand{Value: v, Set: true}
}

// Boolean is a constant condition.
type Boolean bool

// FieldRule compares a single field against a literal or a second path.
type FieldRule struct {
	Field    string
	Operator FieldOperator
	Value    Operand
	Path     string
	Error    string
}

// ArrayRule applies a quantifier or an emptiness check to a sequence field.
type ArrayRule struct {
	Field         string
	ArrayOperator ArrayOperator
	ArrayType     ArrayRepresentation // empty selects the compiler default
	Condition     Condition           // nil when absent
	Count         *int                // nil when absent
	Error         string
}

// DateRule compares a date-valued field with timezone-offset inference.
type DateRule struct {
	Field        string
	DateOperator DateOperator
	Value        Operand
	Path         string
	Error        string
}

// All passes when every sub-condition passes.
type All struct {
	Conditions []Condition
	Error      string
}

// Any passes when at least one sub-condition passes.
type Any struct {
	Conditions []Condition
	Error      string
}

// IfThenElse requires Then when If holds, and Else (if present) otherwise.
type IfThenElse struct {
	If   Condition
	Then Condition
	Else Condition // nil when absent
}

func (Boolean) conditionNode()     {}
func (*FieldRule) conditionNode()  {}
func (*ArrayRule) conditionNode()  {}
func (*DateRule) conditionNode()   {}
func (*All) conditionNode()        {}
func (*Any) conditionNode()        {}
func (*IfThenElse) conditionNode() {}

// FieldOperator names a scalar comparison.
type FieldOperator string

const (
	OpEqual            FieldOperator = "equal"
	OpNotEqual         FieldOperator = "notEqual"
	OpLessThan         FieldOperator = "lessThan"
	OpLessThanEqual    FieldOperator = "lessThanEqual"
	OpGreaterThan      FieldOperator = "greaterThan"
	OpGreaterThanEqual FieldOperator = "greaterThanEqual"
	OpIn               FieldOperator = "in"
	OpNotIn            FieldOperator = "notIn"
	OpContains         FieldOperator = "contains"
	OpNotContains      FieldOperator = "notContains"
	OpStartsWith       FieldOperator = "startsWith"
	OpEndsWith         FieldOperator = "endsWith"
	OpMatch            FieldOperator = "match"
	OpNotMatch         FieldOperator = "notMatch"
	OpBetween          FieldOperator = "between"
	OpNotBetween       FieldOperator = "notBetween"
	OpIsEmpty          FieldOperator = "isEmpty"
	OpNotEmpty         FieldOperator = "notEmpty"
	OpExists           FieldOperator = "exists"
	OpNotExists        FieldOperator = "notExists"
)

var fieldOperators = map[FieldOperator]bool{
	OpEqual: true, OpNotEqual: true,
	OpLessThan: true, OpLessThanEqual: true, OpGreaterThan: true, OpGreaterThanEqual: true,
	OpIn: true, OpNotIn: true,
	OpContains: true, OpNotContains: true, OpStartsWith: true, OpEndsWith: true,
	OpMatch: true, OpNotMatch: true,
	OpBetween: true, OpNotBetween: true,
	OpIsEmpty: true, OpNotEmpty: true, OpExists: true, OpNotExists: true,
}

// Valid reports whether op is a known field operator.
func (op FieldOperator) Valid() bool {
	return fieldOperators[op]
}

// NeedsValue reports whether op compares against an operand. Emptiness and
// existence checks inspect the field alone.
func (op FieldOperator) NeedsValue() bool {
	switch op {
	case OpIsEmpty, OpNotEmpty, OpExists, OpNotExists:
		return false
	default:
		return true
	}
}

// ArrayOperator names a sequence quantifier or emptiness check.
type ArrayOperator string

const (
	ArrayAll      ArrayOperator = "all"
	ArrayAny      ArrayOperator = "any"
	ArrayNone     ArrayOperator = "none"
	ArrayAtLeast  ArrayOperator = "atLeast"
	ArrayAtMost   ArrayOperator = "atMost"
	ArrayExactly  ArrayOperator = "exactly"
	ArrayEmpty    ArrayOperator = "empty"
	ArrayNotEmpty ArrayOperator = "notEmpty"
)

// Valid reports whether op is a known array operator.
func (op ArrayOperator) Valid() bool {
	switch op {
	case ArrayAll, ArrayAny, ArrayNone, ArrayAtLeast, ArrayAtMost, ArrayExactly, ArrayEmpty, ArrayNotEmpty:
		return true
	default:
		return false
	}
}

// NeedsCondition reports whether op evaluates a sub-condition per element.
func (op ArrayOperator) NeedsCondition() bool {
	switch op {
	case ArrayAll, ArrayAny, ArrayNone, ArrayAtLeast, ArrayAtMost, ArrayExactly:
		return true
	default:
		return false
	}
}

// NeedsCount reports whether op compares the match count against Count.
func (op ArrayOperator) NeedsCount() bool {
	switch op {
	case ArrayAtLeast, ArrayAtMost, ArrayExactly:
		return true
	default:
		return false
	}
}

// ArrayRepresentation selects how the SQL compiler measures array length.
type ArrayRepresentation string

const (
	// JSONArray is a jsonb column holding a JSON array (default).
	JSONArray ArrayRepresentation = "jsonb"
	// NativeArray is a PostgreSQL native array column.
	NativeArray ArrayRepresentation = "native"
)

// DateOperator names a date comparison.
type DateOperator string

const (
	DateBefore     DateOperator = "before"
	DateAfter      DateOperator = "after"
	DateOnOrBefore DateOperator = "onOrBefore"
	DateOnOrAfter  DateOperator = "onOrAfter"
	DateBetween    DateOperator = "between"
	DateNotBetween DateOperator = "notBetween"
	DateDayIn      DateOperator = "dayIn"
	DateDayNotIn   DateOperator = "dayNotIn"
)

// Valid reports whether op is a known date operator.
func (op DateOperator) Valid() bool {
	switch op {
	case DateBefore, DateAfter, DateOnOrBefore, DateOnOrAfter, DateBetween, DateNotBetween, DateDayIn, DateDayNotIn:
		return true
	default:
		return false
	}
}
