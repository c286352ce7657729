package discovery

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
)

// Raw request keys understood by NormalizeCriteria.
const (
	ParamCategoryID        = "category_id"
	ParamCondition         = "condition"
	ParamState             = "state"
	ParamCity              = "city"
	ParamPriceMin          = "price_min"
	ParamPriceMax          = "price_max"
	ParamBrand             = "brand"
	ParamYearMin           = "year_min"
	ParamYearMax           = "year_max"
	ParamFeatured          = "featured"
	ParamVerified          = "verified"
	ParamWithImages        = "with_images"
	ParamCurrency          = "currency"
	ParamNegotiable        = "negotiable"
	ParamDeliveryAvailable = "delivery_available"
	ParamSortBy            = "sort_by"
	ParamSortDirection     = "sort_direction"
	ParamPage              = "page"
	ParamPerPage           = "per_page"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MinPerPage     = 1
	MaxPerPage     = 50

	DefaultSortBy        = "created_at"
	DefaultSortDirection = "desc"
)

var (
	truthy = map[string]struct{}{"1": {}, "true": {}, "t": {}, "yes": {}, "y": {}, "on": {}}
	falsy  = map[string]struct{}{"0": {}, "false": {}, "f": {}, "no": {}, "n": {}, "off": {}}
)

// Opt is an optional value. The zero Opt is unset.
type Opt[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

func (o Opt[T]) IsSet() bool { return o.ok }

// TriState distinguishes an absent boolean filter from an explicit false.
type TriState uint8

const (
	Unset TriState = iota
	True
	False
)

func (t TriState) Bool() (value, ok bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// Criteria is the normalized form of one discovery request. It is a value type:
// copies never share state, so it is never mutated after NormalizeCriteria returns.
type Criteria struct {
	CategoryID Opt[int64]
	Condition  domain.Condition
	State      string
	City       string
	PriceMin   Opt[float64]
	PriceMax   Opt[float64]
	Brand      string
	YearMin    Opt[int]
	YearMax    Opt[int]

	FeaturedOnly   bool
	VerifiedOnly   bool
	WithImagesOnly bool

	Currency          string
	Negotiable        TriState
	DeliveryAvailable TriState

	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// DefaultCriteria is what an empty request normalizes to.
func DefaultCriteria() Criteria {
	return Criteria{
		SortBy:        DefaultSortBy,
		SortDirection: DefaultSortDirection,
		Page:          DefaultPage,
		PerPage:       DefaultPerPage,
	}
}

// HasFilters reports whether any discriminating field is present.
func (c Criteria) HasFilters() bool {
	return c.CategoryID.IsSet() ||
		c.Condition != "" ||
		c.State != "" ||
		c.City != "" ||
		c.PriceMin.IsSet() || c.PriceMax.IsSet() ||
		c.Brand != "" ||
		c.YearMin.IsSet() || c.YearMax.IsSet() ||
		c.FeaturedOnly || c.VerifiedOnly || c.WithImagesOnly ||
		c.Currency != "" ||
		c.Negotiable != Unset || c.DeliveryAvailable != Unset
}

// NormalizeCriteria turns loosely typed request fields into Criteria.
// Only a non-numeric value in a numeric filter field is an error; everything
// else degrades to its default.
func NormalizeCriteria(raw map[string]string) (Criteria, error) {
	c := DefaultCriteria()
	get := func(key string) string { return strings.TrimSpace(raw[key]) }

	var err error
	if c.CategoryID, err = parseInt64(ParamCategoryID, get(ParamCategoryID)); err != nil {
		return Criteria{}, err
	}
	if c.PriceMin, err = parseFloat(ParamPriceMin, get(ParamPriceMin)); err != nil {
		return Criteria{}, err
	}
	if c.PriceMax, err = parseFloat(ParamPriceMax, get(ParamPriceMax)); err != nil {
		return Criteria{}, err
	}
	if c.YearMin, err = parseInt(ParamYearMin, get(ParamYearMin)); err != nil {
		return Criteria{}, err
	}
	if c.YearMax, err = parseInt(ParamYearMax, get(ParamYearMax)); err != nil {
		return Criteria{}, err
	}

	c.Condition = normalizeCondition(get(ParamCondition))
	c.State = get(ParamState)
	c.City = get(ParamCity)
	c.Brand = get(ParamBrand)
	c.Currency = strings.ToUpper(get(ParamCurrency))

	c.FeaturedOnly = isTruthy(get(ParamFeatured))
	c.VerifiedOnly = isTruthy(get(ParamVerified))
	c.WithImagesOnly = isTruthy(get(ParamWithImages))
	c.Negotiable = parseTriState(get(ParamNegotiable))
	c.DeliveryAvailable = parseTriState(get(ParamDeliveryAvailable))

	if v := get(ParamSortBy); v != "" {
		c.SortBy = v
	}
	if v := get(ParamSortDirection); v != "" {
		c.SortDirection = v
	}

	c.Page = ClampPage(lenientInt(get(ParamPage), DefaultPage))
	c.PerPage = ClampPerPage(lenientInt(get(ParamPerPage), DefaultPerPage))
	return c, nil
}

// ClampPage enforces page >= 1. There is no upper bound.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPerPage enforces MinPerPage <= perPage <= MaxPerPage.
func ClampPerPage(perPage int) int {
	switch {
	case perPage < MinPerPage:
		return MinPerPage
	case perPage > MaxPerPage:
		return MaxPerPage
	default:
		return perPage
	}
}

func isTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(v)]
	return ok
}

func parseTriState(v string) TriState {
	v = strings.ToLower(v)
	if _, ok := truthy[v]; ok {
		return True
	}
	if _, ok := falsy[v]; ok {
		return False
	}
	return Unset
}

func normalizeCondition(v string) domain.Condition {
	if v == "" {
		return ""
	}
	c := domain.Condition(strings.ReplaceAll(strings.ToLower(v), "_", "-"))
	if !c.Valid() {
		return ""
	}
	return c
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s must be numeric, got %q", domain.ErrInvalidCriteria, field, value)
}

func parseInt64(field, v string) (Opt[int64], error) {
	if v == "" {
		return Opt[int64]{}, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return Opt[int64]{}, invalid(field, v)
	}
	return Some(n), nil
}

func parseInt(field, v string) (Opt[int], error) {
	if v == "" {
		return Opt[int]{}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Opt[int]{}, invalid(field, v)
	}
	return Some(n), nil
}

func parseFloat(field, v string) (Opt[float64], error) {
	if v == "" {
		return Opt[float64]{}, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return Opt[float64]{}, invalid(field, v)
	}
	return Some(f), nil
}

// lenientInt parses paging fields; anything unparsable falls back to def.
func lenientInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		// out of range values come back saturated, which clamping handles
		return n
	}
	if f, ferr := strconv.ParseFloat(v, 64); ferr == nil && f >= math.MinInt32 && f <= math.MaxInt32 {
		return int(f)
	}
	return def
}
