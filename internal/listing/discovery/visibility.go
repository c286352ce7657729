package discovery

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// VisibilityClauses is the fixed eligibility rule: active, published at or
// before now, and either open-ended or expiring after now.
func VisibilityClauses(now time.Time) []Clause {
	return []Clause{
		{Field: FieldStatus, Op: OpEq, Value: string(domain.StatusActive)},
		{Field: FieldPublishedAt, Op: OpLte, Value: now},
		{Field: FieldExpiresAt, Op: OpNullOrGt, Value: now},
	}
}

// Visible is the predicate every discovery path starts from.
func Visible(now time.Time) Predicate {
	return NewPredicate(VisibilityClauses(now)...)
}
