// internal/sqlgen/array.go
package sqlgen

import "github.com/solatis/jsoncond/internal/types"

func (b *builder) buildArray(rule *types.ArrayRule) (string, error) {
	switch op := rule.ArrayOperator; op {
	case types.ArrayEmpty, types.ArrayNotEmpty:
		arrayType := rule.ArrayType
		if arrayType == "" {
			arrayType = b.arrayType
		}
		if arrayType == types.NativeArray {
			field := fieldExpr(rule.Field, false)
			if op == types.ArrayEmpty {
				return "array_length(" + field + ", 1) IS NULL", nil
			}
			return "array_length(" + field + ", 1) IS NOT NULL", nil
		}
		field := fieldExpr(rule.Field, true)
		if op == types.ArrayEmpty {
			return "(" + field + " IS NULL OR jsonb_array_length(" + field + ") = 0)", nil
		}
		return "(" + field + " IS NOT NULL AND jsonb_array_length(" + field + ") > 0)", nil

	case types.ArrayAll, types.ArrayAny, types.ArrayNone, types.ArrayAtLeast, types.ArrayAtMost, types.ArrayExactly:
		return "", types.Unsupported("Array operator '%s' with conditions is not supported in SQL. Use application-level filtering for complex array operations.", op)

	default:
		return "", types.Malformed("Unknown array operator: %s", op)
	}
}
