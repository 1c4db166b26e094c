// internal/sqlgen/quote.go
package sqlgen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/solatis/jsoncond/internal/rules"
)

// QuoteIdentifier quotes a column or table name, doubling embedded quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a JSON object key as a string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters so s matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// fieldExpr renders a dotted field as a column reference. The first segment
// is the column; later segments are quoted object-key steps into a JSON
// document, with the last one extracted as text (->>) unless asJSON keeps it
// as jsonb (->).
func fieldExpr(field string, asJSON bool) string {
	segments := rules.ParsePath(strings.TrimPrefix(field, rules.CurrentElementPrefix))
	if len(segments) == 0 {
		return QuoteIdentifier(field)
	}
	var sb strings.Builder
	sb.WriteString(QuoteIdentifier(segments[0].Key))
	for i, seg := range segments[1:] {
		last := i == len(segments)-2
		if last && !asJSON {
			sb.WriteString("->>")
		} else {
			sb.WriteString("->")
		}
		sb.WriteString(quoteLiteral(seg.Key))
	}
	return sb.String()
}

// stringify renders a LIKE operand the way it reads in JSON text.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		if n, ok := asFloat(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// asList converts any slice or array operand to []any.
func asList(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
