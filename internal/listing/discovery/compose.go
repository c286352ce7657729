package discovery

import "time"

// Compose turns criteria into a predicate. The visibility clauses always come
// first and no criteria field can remove them. Absent fields add nothing.
func Compose(c Criteria, now time.Time) Predicate {
	return Visible(now).And(CriteriaClauses(c)...)
}

// CriteriaClauses returns the caller-driven clauses only.
func CriteriaClauses(c Criteria) []Clause {
	var out []Clause
	eq := func(f Field, v any) { out = append(out, Clause{Field: f, Op: OpEq, Value: v}) }

	if id, ok := c.CategoryID.Get(); ok {
		eq(FieldCategoryID, id)
	}
	if c.Condition != "" {
		eq(FieldCondition, string(c.Condition))
	}
	if c.State != "" {
		eq(FieldState, c.State)
	}
	if c.City != "" {
		eq(FieldCity, c.City)
	}
	if c.Currency != "" {
		eq(FieldCurrency, c.Currency)
	}

	// min > max is left alone and simply matches nothing
	if v, ok := c.PriceMin.Get(); ok {
		out = append(out, Clause{Field: FieldPrice, Op: OpGte, Value: v})
	}
	if v, ok := c.PriceMax.Get(); ok {
		out = append(out, Clause{Field: FieldPrice, Op: OpLte, Value: v})
	}

	if c.Brand != "" {
		out = append(out, Clause{Field: FieldBrand, Op: OpContainsFold, Value: c.Brand})
	}

	if v, ok := c.YearMin.Get(); ok {
		out = append(out, Clause{Field: FieldYear, Op: OpGte, Value: int64(v)})
	}
	if v, ok := c.YearMax.Get(); ok {
		out = append(out, Clause{Field: FieldYear, Op: OpLte, Value: int64(v)})
	}

	if c.FeaturedOnly {
		eq(FieldFeatured, true)
	}
	if c.VerifiedOnly {
		eq(FieldVerified, true)
	}
	if c.WithImagesOnly {
		out = append(out, Clause{Field: FieldImages, Op: OpNotEmpty})
	}

	if v, ok := c.Negotiable.Bool(); ok {
		eq(FieldNegotiable, v)
	}
	if v, ok := c.DeliveryAvailable.Bool(); ok {
		eq(FieldDeliveryAvailable, v)
	}
	return out
}
