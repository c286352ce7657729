package discovery

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrInt(v int) *int { return &v }

// visibleListing returns a listing that passes the eligibility rule at testNow.
func visibleListing(id int64) *domain.Listing {
	return &domain.Listing{
		ID:          id,
		Title:       "Listing",
		Status:      domain.StatusActive,
		PublishedAt: ptrTime(testNow.Add(-24 * time.Hour)),
		CreatedAt:   testNow.Add(-48 * time.Hour),
		Currency:    "USD",
	}
}
