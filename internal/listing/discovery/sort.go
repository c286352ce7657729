package discovery

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// SortKey is a caller-selectable ordering key.
type SortKey string

const (
	SortCreatedAt    SortKey = "created_at"
	SortPublishedAt  SortKey = "published_at"
	SortPrice        SortKey = "price"
	SortViewCount    SortKey = "view_count"
	SortInquiryCount SortKey = "inquiry_count"
	SortTitle        SortKey = "title"
	SortYear         SortKey = "year"
)

var sortFields = map[SortKey]Field{
	SortCreatedAt:    FieldCreatedAt,
	SortPublishedAt:  FieldPublishedAt,
	SortPrice:        FieldPrice,
	SortViewCount:    FieldViewCount,
	SortInquiryCount: FieldInquiryCount,
	SortTitle:        FieldTitle,
	SortYear:         FieldYear,
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortTerm orders by one field. Null values sort as the smallest value.
type SortTerm struct {
	Field Field
	Dir   Direction
}

// Ordering is a list of sort terms applied left to right.
type Ordering []SortTerm

// ParseSortKey maps a requested key onto the allow-list, falling back to created_at.
func ParseSortKey(raw string) SortKey {
	k := SortKey(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if _, ok := sortFields[k]; ok {
		return k
	}
	return SortCreatedAt
}

// ParseDirection accepts asc or desc and falls back to desc.
func ParseDirection(raw string) Direction {
	if Direction(strings.ToLower(strings.TrimSpace(raw))) == Asc {
		return Asc
	}
	return Desc
}

// ResolveSort builds the ordering for browse and search. With featuredOnly the
// ordering starts with featured desc. The id term last makes the ordering
// total, so a listing keeps its position between pages.
func ResolveSort(key, dir string, featuredOnly bool) Ordering {
	k, d := ParseSortKey(key), ParseDirection(dir)
	var o Ordering
	if featuredOnly {
		o = append(o, SortTerm{Field: FieldFeatured, Dir: Desc})
	}
	return append(o, SortTerm{Field: sortFields[k], Dir: d}, SortTerm{Field: FieldID, Dir: d})
}

// ResolveCriteriaSort resolves the ordering carried by c.
func ResolveCriteriaSort(c Criteria) Ordering {
	return ResolveSort(c.SortBy, c.SortDirection, c.FeaturedOnly)
}

// PopularOrdering is fixed: most viewed first, inquiries break ties.
func PopularOrdering() Ordering {
	return Ordering{
		{Field: FieldViewCount, Dir: Desc},
		{Field: FieldInquiryCount, Dir: Desc},
		{Field: FieldID, Dir: Desc},
	}
}

// FeaturedOrdering is newest first.
func FeaturedOrdering() Ordering {
	return Ordering{
		{Field: FieldCreatedAt, Dir: Desc},
		{Field: FieldID, Dir: Desc},
	}
}

// Compare returns a negative number when a sorts before b, positive when after
// and zero when the ordering does not distinguish them.
func (o Ordering) Compare(a, b *domain.Listing) int {
	for _, t := range o {
		c := compareNullable(attribute(a, t.Field), attribute(b, t.Field))
		if c == 0 {
			continue
		}
		if t.Dir == Desc {
			return -c
		}
		return c
	}
	return 0
}

func compareNullable(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := compare(a, b)
	return c
}
