package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// listingDocument is the stored shape of a listing. The numeric listing id is
// used as _id. Nullable fields are stored as null, never omitted, so that
// null checks and sort order behave the same for every document.
type listingDocument struct {
	ID                int64                `bson:"_id"`
	Slug              string               `bson:"slug"`
	OwnerID           string               `bson:"owner_id"`
	CategoryID        int64                `bson:"category_id"`
	Title             string               `bson:"title"`
	Description       string               `bson:"description"`
	Brand             string               `bson:"brand"`
	Model             string               `bson:"model"`
	Condition         domain.Condition     `bson:"condition"`
	Type              domain.ListingType   `bson:"type"`
	Year              *int                 `bson:"year"`
	Price             float64              `bson:"price"`
	Currency          string               `bson:"currency"`
	Negotiable        bool                 `bson:"negotiable"`
	DeliveryAvailable bool                 `bson:"delivery_available"`
	State             string               `bson:"state"`
	City              string               `bson:"city"`
	Status            domain.ListingStatus `bson:"status"`
	PublishedAt       *time.Time           `bson:"published_at"`
	ExpiresAt         *time.Time           `bson:"expires_at"`
	Verified          bool                 `bson:"verified"`
	Featured          bool                 `bson:"featured"`
	Images            []string             `bson:"images"`
	Tags              []string             `bson:"tags"`
	ViewCount         int64                `bson:"view_count"`
	InquiryCount      int64                `bson:"inquiry_count"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func toListingDocument(l *domain.Listing) *listingDocument {
	if l == nil {
		return nil
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return &listingDocument{
		ID:                l.ID,
		Slug:              l.Slug,
		OwnerID:           l.OwnerID,
		CategoryID:        l.CategoryID,
		Title:             l.Title,
		Description:       l.Description,
		Brand:             l.Brand,
		Model:             l.Model,
		Condition:         l.Condition,
		Type:              l.Type,
		Year:              l.Year,
		Price:             l.Price,
		Currency:          l.Currency,
		Negotiable:        l.Negotiable,
		DeliveryAvailable: l.DeliveryAvailable,
		State:             l.State,
		City:              l.City,
		Status:            l.Status,
		PublishedAt:       l.PublishedAt,
		ExpiresAt:         l.ExpiresAt,
		Verified:          l.Verified,
		Featured:          l.Featured,
		Images:            images,
		Tags:              tags,
		ViewCount:         l.ViewCount,
		InquiryCount:      l.InquiryCount,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	return &domain.Listing{
		ID:                d.ID,
		Slug:              d.Slug,
		OwnerID:           d.OwnerID,
		CategoryID:        d.CategoryID,
		Title:             d.Title,
		Description:       d.Description,
		Brand:             d.Brand,
		Model:             d.Model,
		Condition:         d.Condition,
		Type:              d.Type,
		Year:              d.Year,
		Price:             d.Price,
		Currency:          d.Currency,
		Negotiable:        d.Negotiable,
		DeliveryAvailable: d.DeliveryAvailable,
		State:             d.State,
		City:              d.City,
		Status:            d.Status,
		PublishedAt:       utcPtr(d.PublishedAt),
		ExpiresAt:         utcPtr(d.ExpiresAt),
		Verified:          d.Verified,
		Featured:          d.Featured,
		Images:            d.Images,
		Tags:              d.Tags,
		ViewCount:         d.ViewCount,
		InquiryCount:      d.InquiryCount,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
