package sqlgen

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Representative compilations pinned as golden files. Regenerate with
// go test ./internal/sqlgen -update after an intended output change.
var goldenConditions = []struct {
	name      string
	condition string
}{
	{
		name: "account_eligibility",
		condition: `{"all": [
			{"field": "deletedAt", "operator": "equal", "value": null},
			{"field": "status", "operator": "in", "value": ["active", "pending"]},
			{"field": "age", "operator": "between", "value": [18, 65]},
			{"field": "email", "operator": "endsWith", "value": "@example.com"}
		]}`,
	},
	{
		name: "trial_or_subscribed",
		condition: `{"if": {"field": "plan.type", "operator": "equal", "value": "trial"},
			"then": {"field": "plan.daysLeft", "operator": "greaterThan", "value": 0},
			"else": {"any": [
				{"field": "subscribed", "operator": "equal", "value": true},
				{"field": "tags", "arrayOperator": "notEmpty"}
			]}}`,
	},
	{
		name: "business_days",
		condition: `{"all": [
			{"field": "createdAt", "dateOperator": "between", "value": ["2025-01-01T00:00:00Z", "2025-12-31T23:59:59Z"]},
			{"field": "createdAt", "dateOperator": "dayNotIn", "value": ["saturday", "sunday"]},
			{"field": "roles", "arrayOperator": "notEmpty", "arrayType": "native"}
		]}`,
	},
}

func TestCompile_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range goldenConditions {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := Compile(mustParse(t, tc.condition))
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			params, err := json.Marshal(pred.Params)
			if err != nil {
				t.Fatalf("marshal params: %v", err)
			}
			g.Assert(t, tc.name, []byte(pred.SQL+"\n"+string(params)+"\n"))
		})
	}
}
