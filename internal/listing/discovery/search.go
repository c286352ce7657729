package discovery

import (
	"strings"
	"time"
)

// ComposeSearch adds a free-text match to the criteria predicate. The text
// matches when any of title, description, brand or model contains it, or when
// it equals one of the tags, all case-insensitively. A blank query adds nothing.
func ComposeSearch(query string, c Criteria, now time.Time) Predicate {
	p := Compose(c, now)
	q := strings.TrimSpace(query)
	if q == "" {
		return p
	}
	return p.AnyOf(TextClauses(q)...)
}

// TextClauses lists the per-field alternatives for a non-blank query.
func TextClauses(q string) []Clause {
	return []Clause{
		{Field: FieldTitle, Op: OpContainsFold, Value: q},
		{Field: FieldDescription, Op: OpContainsFold, Value: q},
		{Field: FieldBrand, Op: OpContainsFold, Value: q},
		{Field: FieldModel, Op: OpContainsFold, Value: q},
		{Field: FieldTags, Op: OpHasElemFold, Value: q},
	}
}
