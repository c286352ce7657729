package postgres

import (
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
)

// columns is the closed set of fields a query may touch. Column names never
// come from caller input.
var columns = map[discovery.Field]string{
	discovery.FieldID:                "id",
	discovery.FieldStatus:            "status",
	discovery.FieldPublishedAt:       "published_at",
	discovery.FieldExpiresAt:         "expires_at",
	discovery.FieldCreatedAt:         "created_at",
	discovery.FieldCategoryID:        "category_id",
	discovery.FieldCondition:         "condition",
	discovery.FieldState:             "state",
	discovery.FieldCity:              "city",
	discovery.FieldCurrency:          "currency",
	discovery.FieldPrice:             "price",
	discovery.FieldYear:              "year",
	discovery.FieldTitle:             "title",
	discovery.FieldDescription:       "description",
	discovery.FieldBrand:             "brand",
	discovery.FieldModel:             "model",
	discovery.FieldFeatured:          "featured",
	discovery.FieldVerified:          "verified",
	discovery.FieldNegotiable:        "negotiable",
	discovery.FieldDeliveryAvailable: "delivery_available",
	discovery.FieldImages:            "images",
	discovery.FieldTags:              "tags",
	discovery.FieldViewCount:         "view_count",
	discovery.FieldInquiryCount:      "inquiry_count",
}

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{argId: 1, args: make([]interface{}, 0)}
}

// placeholder registers arg and returns its $n marker.
func (qb *queryBuilder) placeholder(arg interface{}) string {
	p := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return p
}

func (qb *queryBuilder) clause(c discovery.Clause) (string, error) {
	col, ok := columns[c.Field]
	if !ok {
		return "", fmt.Errorf("postgres: unknown field %q", c.Field)
	}
	switch c.Op {
	case discovery.OpEq:
		return fmt.Sprintf("%s = %s", col, qb.placeholder(c.Value)), nil
	case discovery.OpGte:
		return fmt.Sprintf("%s >= %s", col, qb.placeholder(c.Value)), nil
	case discovery.OpLte:
		return fmt.Sprintf("%s <= %s", col, qb.placeholder(c.Value)), nil
	case discovery.OpNullOrGt:
		return fmt.Sprintf("(%s IS NULL OR %s > %s)", col, col, qb.placeholder(c.Value)), nil
	case discovery.OpContainsFold:
		s, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("postgres: %s on %s needs a string, got %T", c.Op, c.Field, c.Value)
		}
		return fmt.Sprintf("%s ILIKE %s", col, qb.placeholder("%"+escapeLike(s)+"%")), nil
	case discovery.OpHasElemFold:
		s, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("postgres: %s on %s needs a string, got %T", c.Op, c.Field, c.Value)
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(%s) AS e(v) WHERE lower(e.v) = lower(%s))", col, qb.placeholder(s)), nil
	case discovery.OpNotEmpty:
		return fmt.Sprintf("cardinality(%s) > 0", col), nil
	default:
		return "", fmt.Errorf("postgres: unsupported operator %s on %s", c.Op, c.Field)
	}
}

// applyPredicate adds every conjunctive clause and, when present, one
// parenthesised OR group.
func (qb *queryBuilder) applyPredicate(p discovery.Predicate) error {
	for _, c := range p.All() {
		cond, err := qb.clause(c)
		if err != nil {
			return err
		}
		qb.conditions = append(qb.conditions, cond)
	}

	anyOf := p.Any()
	if len(anyOf) == 0 {
		return nil
	}
	alts := make([]string, 0, len(anyOf))
	for _, c := range anyOf {
		cond, err := qb.clause(c)
		if err != nil {
			return err
		}
		alts = append(alts, cond)
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(alts, " OR ")+")")
	return nil
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// buildWhere returns the WHERE clause and its arguments for p.
func buildWhere(p discovery.Predicate) (string, []interface{}, error) {
	qb := newQueryBuilder()
	if err := qb.applyPredicate(p); err != nil {
		return "", nil, err
	}
	return qb.where(), qb.args, nil
}

// buildOrderBy renders an ordering. Nulls sort lowest: first when ascending,
// last when descending.
func buildOrderBy(o discovery.Ordering) (string, error) {
	if len(o) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(o))
	for _, t := range o {
		col, ok := columns[t.Field]
		if !ok {
			return "", fmt.Errorf("postgres: unknown sort field %q", t.Field)
		}
		if t.Dir == discovery.Desc {
			terms = append(terms, col+" DESC NULLS LAST")
		} else {
			terms = append(terms, col+" ASC NULLS FIRST")
		}
	}
	return "ORDER BY " + strings.Join(terms, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
