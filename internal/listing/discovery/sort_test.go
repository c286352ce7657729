package discovery

import (
	"sort"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name     string
		key, dir string
		featured bool
		want     Ordering
	}{
		{
			name: "defaults",
			key:  "", dir: "",
			want: Ordering{{FieldCreatedAt, Desc}, {FieldID, Desc}},
		},
		{
			name: "price asc",
			key:  "price", dir: "asc",
			want: Ordering{{FieldPrice, Asc}, {FieldID, Asc}},
		},
		{
			name: "hyphenated key and upper-case direction",
			key:  "view-count", dir: "ASC",
			want: Ordering{{FieldViewCount, Asc}, {FieldID, Asc}},
		},
		{
			name: "unknown key falls back to created_at",
			key:  "password", dir: "asc",
			want: Ordering{{FieldCreatedAt, Asc}, {FieldID, Asc}},
		},
		{
			name: "unknown direction falls back to desc",
			key:  "title", dir: "random",
			want: Ordering{{FieldTitle, Desc}, {FieldID, Desc}},
		},
		{
			name: "featured only prepends featured desc",
			key:  "year", dir: "asc", featured: true,
			want: Ordering{{FieldFeatured, Desc}, {FieldYear, Asc}, {FieldID, Asc}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSort(tt.key, tt.dir, tt.featured))
		})
	}
}

func TestResolveSort_AllowList(t *testing.T) {
	for _, key := range []string{"created_at", "published_at", "price", "view_count", "inquiry_count", "title", "year"} {
		assert.Equal(t, SortKey(key), ParseSortKey(key))
	}
	for _, key := range []string{"id", "featured", "owner_id", "price; DROP"} {
		assert.Equal(t, SortCreatedAt, ParseSortKey(key))
	}
}

func TestOrdering_Compare(t *testing.T) {
	a := visibleListing(1)
	a.Price = 10
	b := visibleListing(2)
	b.Price = 20
	c := visibleListing(3)
	c.Price = 10

	items := []*domain.Listing{b, c, a}
	o := ResolveSort("price", "asc", false)
	sort.SliceStable(items, func(i, j int) bool { return o.Compare(items[i], items[j]) < 0 })
	assert.Equal(t, []int64{1, 3, 2}, ids(items))

	o = ResolveSort("price", "desc", false)
	sort.SliceStable(items, func(i, j int) bool { return o.Compare(items[i], items[j]) < 0 })
	assert.Equal(t, []int64{2, 3, 1}, ids(items))
}

func TestOrdering_NullsSortLowest(t *testing.T) {
	withYear := visibleListing(1)
	withYear.Year = ptrInt(2001)
	without := visibleListing(2)

	asc := ResolveSort("year", "asc", false)
	assert.Negative(t, asc.Compare(without, withYear))

	desc := ResolveSort("year", "desc", false)
	assert.Positive(t, desc.Compare(without, withYear))
}

func TestOrdering_FeaturedOnlyKeepsSecondaryOrder(t *testing.T) {
	old := visibleListing(1)
	old.Featured = true
	old.CreatedAt = testNow.Add(-72 * time.Hour)
	recent := visibleListing(2)
	recent.Featured = true
	recent.CreatedAt = testNow.Add(-time.Hour)

	o := ResolveSort("created_at", "desc", true)
	assert.Negative(t, o.Compare(recent, old))

	o = ResolveSort("created_at", "asc", true)
	assert.Negative(t, o.Compare(old, recent))
}

func TestPopularOrdering(t *testing.T) {
	a := visibleListing(1)
	a.ViewCount, a.InquiryCount = 10, 1
	b := visibleListing(2)
	b.ViewCount, b.InquiryCount = 10, 5
	c := visibleListing(3)
	c.ViewCount, c.InquiryCount = 50, 0

	items := []*domain.Listing{a, b, c}
	o := PopularOrdering()
	sort.SliceStable(items, func(i, j int) bool { return o.Compare(items[i], items[j]) < 0 })
	assert.Equal(t, []int64{3, 2, 1}, ids(items))
}

func ids(items []*domain.Listing) []int64 {
	out := make([]int64, 0, len(items))
	for _, l := range items {
		out = append(out, l.ID)
	}
	return out
}
