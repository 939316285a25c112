package storage

// Predicate is one clause of a document store query. Predicates compose into
// a single bool query, so callers describe what they want and never touch
// raw query JSON.
type Predicate struct {
	clause map[string]any
	negate bool
}

// Term matches documents whose field equals value exactly.
func Term(field string, value any) Predicate {
	return Predicate{clause: map[string]any{
		"term": map[string]any{field: value},
	}}
}

// Terms matches documents whose field equals any of the values.
func Terms(field string, values ...any) Predicate {
	return Predicate{clause: map[string]any{
		"terms": map[string]any{field: values},
	}}
}

// Exists matches documents that carry the field at all.
func Exists(field string) Predicate {
	return Predicate{clause: map[string]any{
		"exists": map[string]any{"field": field},
	}}
}

// NotExists matches documents missing the field.
func NotExists(field string) Predicate {
	p := Exists(field)
	p.negate = true
	return p
}

// RangeGte matches documents whose field is >= value.
func RangeGte(field string, value any) Predicate {
	return Predicate{clause: map[string]any{
		"range": map[string]any{field: map[string]any{"gte": value}},
	}}
}

// RangeLt matches documents whose field is < value.
func RangeLt(field string, value any) Predicate {
	return Predicate{clause: map[string]any{
		"range": map[string]any{field: map[string]any{"lt": value}},
	}}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	p.negate = !p.negate
	return p
}

// Query is a composed document store query with paging and ordering.
type Query struct {
	predicates []Predicate
	size       int
	sortField  string
	sortOrder  string
}

// NewQuery composes predicates into a query. With no predicates it matches
// everything.
func NewQuery(predicates ...Predicate) *Query {
	return &Query{predicates: predicates}
}

// Where appends predicates to the query.
func (q *Query) Where(predicates ...Predicate) *Query {
	q.predicates = append(q.predicates, predicates...)
	return q
}

// Size caps the number of hits returned.
func (q *Query) Size(n int) *Query {
	q.size = n
	return q
}

// SortAsc orders hits by field ascending; cursor paging depends on it.
func (q *Query) SortAsc(field string) *Query {
	q.sortField, q.sortOrder = field, "asc"
	return q
}

// SortDesc orders hits by field descending.
func (q *Query) SortDesc(field string) *Query {
	q.sortField, q.sortOrder = field, "desc"
	return q
}

// Build renders the query as the request body map the client serializes.
func (q *Query) Build() map[string]any {
	var must, mustNot []map[string]any
	for _, p := range q.predicates {
		if p.negate {
			mustNot = append(mustNot, p.clause)
		} else {
			must = append(must, p.clause)
		}
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	body := map[string]any{}
	if len(boolQuery) > 0 {
		body["query"] = map[string]any{"bool": boolQuery}
	} else {
		body["query"] = map[string]any{"match_all": map[string]any{}}
	}
	if q.size > 0 {
		body["size"] = q.size
	}
	if q.sortField != "" {
		body["sort"] = []map[string]any{
			{q.sortField: map[string]any{"order": q.sortOrder}},
		}
	}
	return body
}
