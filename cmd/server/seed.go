package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
)

type listingCreator interface {
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
}

type seedListing struct {
	ID                int64      `json:"id"`
	OwnerID           string     `json:"owner_id"`
	CategoryID        int64      `json:"category_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Brand             string     `json:"brand"`
	Model             string     `json:"model"`
	Condition         string     `json:"condition"`
	Type              string     `json:"type"`
	Year              *int       `json:"year"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	Negotiable        bool       `json:"negotiable"`
	DeliveryAvailable bool       `json:"delivery_available"`
	State             string     `json:"state"`
	City              string     `json:"city"`
	Status            string     `json:"status"`
	PublishedAt       *time.Time `json:"published_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	Verified          bool       `json:"verified"`
	Featured          bool       `json:"featured"`
	Images            []string   `json:"images"`
	Tags              []string   `json:"tags"`
	ViewCount         int64      `json:"view_count"`
	InquiryCount      int64      `json:"inquiry_count"`
}

func (s seedListing) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:                s.ID,
		OwnerID:           s.OwnerID,
		CategoryID:        s.CategoryID,
		Title:             s.Title,
		Description:       s.Description,
		Brand:             s.Brand,
		Model:             s.Model,
		Condition:         domain.Condition(s.Condition),
		Type:              domain.ListingType(s.Type),
		Year:              s.Year,
		Price:             s.Price,
		Currency:          s.Currency,
		Negotiable:        s.Negotiable,
		DeliveryAvailable: s.DeliveryAvailable,
		State:             s.State,
		City:              s.City,
		Status:            domain.ListingStatus(s.Status),
		PublishedAt:       s.PublishedAt,
		ExpiresAt:         s.ExpiresAt,
		Verified:          s.Verified,
		Featured:          s.Featured,
		Images:            s.Images,
		Tags:              s.Tags,
		ViewCount:         s.ViewCount,
		InquiryCount:      s.InquiryCount,
	}
}

// seedListings creates every listing in the JSON file at path. Each record
// must carry its id so that a restart finds it already present; records
// without one are skipped, as are listings that fail to insert.
func seedListings(ctx context.Context, path string, creator listingCreator, log *logger.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var records []seedListing
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	created := 0
	for _, r := range records {
		if r.ID <= 0 {
			log.Warn("seed: listing skipped, id is required", "title", r.Title)
			continue
		}
		if _, err := creator.Create(ctx, r.toDomain()); err != nil {
			log.Warn("seed: listing skipped", "listing_id", r.ID, "title", r.Title, "error", err.Error())
			continue
		}
		created++
	}
	log.Info("seed: listings loaded", "path", path, "created", created, "total", len(records))
	return created, nil
}
