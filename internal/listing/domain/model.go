package domain

import "time"

type ListingStatus string

const (
	StatusDraft    ListingStatus = "draft"
	StatusPending  ListingStatus = "pending"
	StatusActive   ListingStatus = "active"
	StatusSold     ListingStatus = "sold"
	StatusArchived ListingStatus = "archived"
	StatusRejected ListingStatus = "rejected"
)

type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionNewLike   Condition = "new-like"
	ConditionLikeNew   Condition = "like-new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

var conditions = map[Condition]struct{}{
	ConditionNew: {}, ConditionNewLike: {}, ConditionLikeNew: {}, ConditionExcellent: {},
	ConditionGood: {}, ConditionFair: {}, ConditionPoor: {},
}

// Valid reports whether c is one of the enumerated conditions.
func (c Condition) Valid() bool {
	_, ok := conditions[c]
	return ok
}

type ListingType string

const (
	TypeSale  ListingType = "sale"
	TypeLease ListingType = "lease"
	TypeRent  ListingType = "rent"
)

// Listing is a catalog entry for a piece of equipment.
type Listing struct {
	ID          int64
	Slug        string
	OwnerID     string // identity of the seller, issued by user-service
	CategoryID  int64
	Title       string
	Description string
	Brand       string
	Model       string
	Condition   Condition
	Type        ListingType
	Year        *int

	Price             float64
	Currency          string
	Negotiable        bool
	DeliveryAvailable bool

	State string
	City  string

	Status      ListingStatus
	PublishedAt *time.Time
	ExpiresAt   *time.Time

	Verified bool
	Featured bool
	Images   []string
	Tags     []string

	ViewCount    int64
	InquiryCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVisible reports whether the listing may appear in discovery results at now:
// active, published at or before now, and not yet expired.
func (l *Listing) IsVisible(now time.Time) bool {
	if l.Status != StatusActive || l.PublishedAt == nil || l.PublishedAt.After(now) {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// Clone returns a deep copy so callers can't mutate shared store state.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	if l.Year != nil {
		y := *l.Year
		c.Year = &y
	}
	if l.PublishedAt != nil {
		t := *l.PublishedAt
		c.PublishedAt = &t
	}
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	c.Images = append([]string(nil), l.Images...)
	c.Tags = append([]string(nil), l.Tags...)
	return &c
}
