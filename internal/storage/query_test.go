package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMatchAllByDefault(t *testing.T) {
	body := NewQuery().Build()
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, body["query"])
}

func TestQueryComposesPredicates(t *testing.T) {
	body := NewQuery(
		Term("channel_id", "c1"),
		Exists("brand_safety"),
		NotExists("vetting"),
		RangeGte("subscribers", 1000),
	).Size(40).SortAsc("id").Build()

	boolQuery, ok := body["query"].(map[string]any)["bool"].(map[string]any)
	require.True(t, ok)

	must, ok := boolQuery["must"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, must, 3)
	assert.Equal(t, map[string]any{"term": map[string]any{"channel_id": "c1"}}, must[0])
	assert.Equal(t, map[string]any{"exists": map[string]any{"field": "brand_safety"}}, must[1])
	assert.Equal(t, map[string]any{"range": map[string]any{"subscribers": map[string]any{"gte": 1000}}}, must[2])

	mustNot, ok := boolQuery["must_not"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, mustNot, 1)
	assert.Equal(t, map[string]any{"exists": map[string]any{"field": "vetting"}}, mustNot[0])

	assert.Equal(t, 40, body["size"])
	assert.Equal(t, []map[string]any{{"id": map[string]any{"order": "asc"}}}, body["sort"])
}

func TestQueryNotInvertsPredicate(t *testing.T) {
	body := NewQuery(Not(Term("blocklisted", true))).Build()

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	_, hasMust := boolQuery["must"]
	assert.False(t, hasMust)

	mustNot := boolQuery["must_not"].([]map[string]any)
	require.Len(t, mustNot, 1)
	assert.Equal(t, map[string]any{"term": map[string]any{"blocklisted": true}}, mustNot[0])

	// Double negation lands back in must.
	body = NewQuery(Not(Not(Term("blocklisted", true)))).Build()
	boolQuery = body["query"].(map[string]any)["bool"].(map[string]any)
	assert.Len(t, boolQuery["must"], 1)
}

func TestQueryWhereAppends(t *testing.T) {
	q := NewQuery(Term("a", 1)).Where(Term("b", 2))
	boolQuery := q.Build()["query"].(map[string]any)["bool"].(map[string]any)
	assert.Len(t, boolQuery["must"], 2)
}

func TestQueryTerms(t *testing.T) {
	body := NewQuery(Terms("id", "v1", "v2")).Build()
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]map[string]any)
	assert.Equal(t, map[string]any{"terms": map[string]any{"id": []any{"v1", "v2"}}}, must[0])
}
