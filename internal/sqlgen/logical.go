// internal/sqlgen/logical.go
package sqlgen

import (
	"strings"

	"github.com/solatis/jsoncond/internal/types"
)

// buildGroup joins sub-predicates; empty is the group's identity constant.
func (b *builder) buildGroup(conds []types.Condition, sep, empty string) (string, error) {
	if len(conds) == 0 {
		return empty, nil
	}
	clauses := make([]string, 0, len(conds))
	for _, c := range conds {
		clause, err := b.build(c)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return "(" + strings.Join(clauses, sep) + ")", nil
}

// buildIfThenElse compiles material implication. The if fragment is
// compiled once; its text, and so its placeholders, appear twice when else
// is present.
func (b *builder) buildIfThenElse(c *types.IfThenElse) (string, error) {
	ifClause, err := b.build(c.If)
	if err != nil {
		return "", err
	}
	thenClause, err := b.build(c.Then)
	if err != nil {
		return "", err
	}
	implication := "(NOT(" + ifClause + ") OR " + thenClause + ")"
	if c.Else == nil {
		return implication, nil
	}
	elseClause, err := b.build(c.Else)
	if err != nil {
		return "", err
	}
	return "(" + implication + " AND (" + ifClause + " OR " + elseClause + "))", nil
}
