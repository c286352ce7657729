package discovery

import (
	"cmp"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// Field names a listing attribute a clause or sort term can refer to.
type Field string

const (
	FieldID                Field = "id"
	FieldStatus            Field = "status"
	FieldPublishedAt       Field = "published_at"
	FieldExpiresAt         Field = "expires_at"
	FieldCreatedAt         Field = "created_at"
	FieldCategoryID        Field = "category_id"
	FieldCondition         Field = "condition"
	FieldState             Field = "state"
	FieldCity              Field = "city"
	FieldCurrency          Field = "currency"
	FieldPrice             Field = "price"
	FieldYear              Field = "year"
	FieldTitle             Field = "title"
	FieldDescription       Field = "description"
	FieldBrand             Field = "brand"
	FieldModel             Field = "model"
	FieldFeatured          Field = "featured"
	FieldVerified          Field = "verified"
	FieldNegotiable        Field = "negotiable"
	FieldDeliveryAvailable Field = "delivery_available"
	FieldImages            Field = "images"
	FieldTags              Field = "tags"
	FieldViewCount         Field = "view_count"
	FieldInquiryCount      Field = "inquiry_count"
)

type Op uint8

const (
	// OpEq is exact equality.
	OpEq Op = iota + 1
	// OpGte and OpLte are inclusive bounds; a null attribute never satisfies them.
	OpGte
	OpLte
	// OpContainsFold is a case-insensitive substring match on a text attribute.
	OpContainsFold
	// OpNotEmpty holds when a set attribute has at least one element. Value is unused.
	OpNotEmpty
	// OpHasElemFold holds when a set attribute contains Value, compared case-insensitively.
	OpHasElemFold
	// OpNullOrGt holds when the attribute is null or strictly greater than Value.
	OpNullOrGt
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpContainsFold:
		return "contains_fold"
	case OpNotEmpty:
		return "not_empty"
	case OpHasElemFold:
		return "has_elem_fold"
	case OpNullOrGt:
		return "null_or_gt"
	default:
		return "unknown"
	}
}

// Clause is one condition over a listing attribute. Value holds a string,
// int64, float64, bool or time.Time depending on the field.
type Clause struct {
	Field Field
	Op    Op
	Value any
}

// Predicate is an immutable filter: every clause in All must
// hold and, when Any is non-empty, at least one clause in Any must hold.
// Builders return new values; the receiver is never modified.
type Predicate struct {
	all []Clause
	any []Clause
}

// NewPredicate returns a conjunction of the given clauses.
func NewPredicate(clauses ...Clause) Predicate {
	return Predicate{all: append([]Clause(nil), clauses...)}
}

// And returns p with the given clauses added to the conjunction.
func (p Predicate) And(clauses ...Clause) Predicate {
	all := make([]Clause, 0, len(p.all)+len(clauses))
	all = append(all, p.all...)
	all = append(all, clauses...)
	return Predicate{all: all, any: p.any}
}

// AnyOf returns p additionally requiring one of the given clauses.
// It replaces a previously set disjunction.
func (p Predicate) AnyOf(clauses ...Clause) Predicate {
	return Predicate{all: p.all, any: append([]Clause(nil), clauses...)}
}

// All returns a copy of the conjunctive clauses.
func (p Predicate) All() []Clause { return append([]Clause(nil), p.all...) }

// Any returns a copy of the disjunctive clauses.
func (p Predicate) Any() []Clause { return append([]Clause(nil), p.any...) }

// Matches evaluates the predicate against a single listing.
func (p Predicate) Matches(l *domain.Listing) bool {
	if l == nil {
		return false
	}
	for _, c := range p.all {
		if !c.Matches(l) {
			return false
		}
	}
	if len(p.any) == 0 {
		return true
	}
	for _, c := range p.any {
		if c.Matches(l) {
			return true
		}
	}
	return false
}

// Matches evaluates one clause against a listing.
func (c Clause) Matches(l *domain.Listing) bool {
	attr := attribute(l, c.Field)
	switch c.Op {
	case OpEq:
		if attr == nil {
			return false
		}
		order, ok := compare(attr, c.Value)
		return ok && order == 0
	case OpGte:
		if attr == nil {
			return false
		}
		order, ok := compare(attr, c.Value)
		return ok && order >= 0
	case OpLte:
		if attr == nil {
			return false
		}
		order, ok := compare(attr, c.Value)
		return ok && order <= 0
	case OpNullOrGt:
		if attr == nil {
			return true
		}
		order, ok := compare(attr, c.Value)
		return ok && order > 0
	case OpContainsFold:
		s, ok := attr.(string)
		needle, nok := c.Value.(string)
		return ok && nok && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case OpNotEmpty:
		set, ok := attr.([]string)
		return ok && len(set) > 0
	case OpHasElemFold:
		set, ok := attr.([]string)
		needle, nok := c.Value.(string)
		if !ok || !nok {
			return false
		}
		for _, el := range set {
			if strings.EqualFold(el, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// attribute returns the value of field f on l, or nil when the attribute is null.
func attribute(l *domain.Listing, f Field) any {
	switch f {
	case FieldID:
		return l.ID
	case FieldStatus:
		return string(l.Status)
	case FieldPublishedAt:
		if l.PublishedAt == nil {
			return nil
		}
		return *l.PublishedAt
	case FieldExpiresAt:
		if l.ExpiresAt == nil {
			return nil
		}
		return *l.ExpiresAt
	case FieldCreatedAt:
		return l.CreatedAt
	case FieldCategoryID:
		return l.CategoryID
	case FieldCondition:
		return string(l.Condition)
	case FieldState:
		return l.State
	case FieldCity:
		return l.City
	case FieldCurrency:
		return l.Currency
	case FieldPrice:
		return l.Price
	case FieldYear:
		if l.Year == nil {
			return nil
		}
		return int64(*l.Year)
	case FieldTitle:
		return l.Title
	case FieldDescription:
		return l.Description
	case FieldBrand:
		return l.Brand
	case FieldModel:
		return l.Model
	case FieldFeatured:
		return l.Featured
	case FieldVerified:
		return l.Verified
	case FieldNegotiable:
		return l.Negotiable
	case FieldDeliveryAvailable:
		return l.DeliveryAvailable
	case FieldImages:
		return l.Images
	case FieldTags:
		return l.Tags
	case FieldViewCount:
		return l.ViewCount
	case FieldInquiryCount:
		return l.InquiryCount
	default:
		return nil
	}
}

// compare orders two attribute values of compatible kinds. Numbers compare
// numerically across int/int64/float64; false sorts before true.
func compare(a, b any) (int, bool) {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return cmp.Compare(ai, bi), true
		}
	}
	if af, ok := number(a); ok {
		bf, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
