package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/communityhq/community-api/graph"
)

func loadOperation(t *testing.T, query string) (*ast.QueryDocument, *ast.OperationDefinition) {
	t.Helper()

	doc, errList := gqlparser.LoadQuery(graph.Schema(), query)
	require.Empty(t, errList)
	require.Len(t, doc.Operations, 1)
	return doc, doc.Operations[0]
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cost  int
	}{
		{
			name:  "undeclared field costs one",
			query: `{ hello }`,
			cost:  1,
		},
		{
			name:  "sibling fields add",
			query: `{ hello bye }`,
			cost:  2,
		},
		{
			name:  "declared weight without children",
			query: `{ usersCountByDate { createdDate } }`,
			cost:  11,
		},
		{
			name:  "nested selections add",
			query: `{ usersCountByDate { createdDate count cumulativeCount } }`,
			cost:  13,
		},
		{
			name:  "multiplier scales the subtree",
			query: `{ users { id username } }`,
			cost:  25, // 5 + 10 * 2
		},
		{
			name:  "fragment spreads count like inline fields",
			query: `query { users { ...userFields } } fragment userFields on User { id username }`,
			cost:  25,
		},
		{
			name:  "unweighted parent with children",
			query: `{ me { id username email } }`,
			cost:  4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, op := loadOperation(t, tc.query)
			require.Equal(t, tc.cost, graph.Estimate(doc, op))
		})
	}
}

func TestGateAdmitsBelowThreshold(t *testing.T) {
	gate := graph.NewGate(45)
	doc, op := loadOperation(t, `{ users { id username } }`)

	cost, err := gate.Admit(doc, op)
	require.NoError(t, err)
	require.Equal(t, 25, cost)
}

func TestGateRejectsAtThreshold(t *testing.T) {
	gate := graph.NewGate(45)
	// 5 + 10 * 4 = 45, equal to the threshold and therefore rejected
	doc, op := loadOperation(t, `{ users { id username email confirmed } }`)

	cost, err := gate.Admit(doc, op)
	require.Equal(t, 45, cost)
	require.Error(t, err)

	var complexityErr *graph.ComplexityError
	require.ErrorAs(t, err, &complexityErr)
	require.Equal(t, 45, complexityErr.Cost)
	require.Equal(t, 45, complexityErr.Threshold)
	require.Equal(t, "query is too complex: complexity 45 is over the maximum allowed complexity of 45", err.Error())
}

func TestGateRejectsAboveThreshold(t *testing.T) {
	gate := graph.NewGate(45)
	doc, op := loadOperation(t, `{ users { id username email confirmed roles } }`)

	cost, err := gate.Admit(doc, op)
	require.Equal(t, 55, cost)
	require.Error(t, err)
}
