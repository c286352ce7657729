package grpc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldQuery = "q"
	fieldLimit = "limit"
	fieldID    = "id"
	fieldSlug  = "slug"
)

// structFilters flattens scalar request fields into the string map the
// criteria parser expects. Null fields are treated as absent.
func structFilters(req *structpb.Struct, skip ...string) (map[string]string, error) {
	out := make(map[string]string, len(req.GetFields()))
	for key, v := range req.GetFields() {
		if contains(skip, key) {
			continue
		}
		s, ok, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidCriteria, key, err)
		}
		if ok {
			out[key] = s
		}
	}
	return out, nil
}

func scalarString(v *structpb.Value) (string, bool, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, true, nil
	case *structpb.Value_NumberValue:
		return formatNumber(k.NumberValue), true, nil
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue), true, nil
	case *structpb.Value_NullValue, nil:
		return "", false, nil
	default:
		return "", false, errors.New("expected a scalar value")
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// intField reads an integer that may arrive as a number or a numeric string.
func intField(req *structpb.Struct, key string) (int64, bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false, nil
	}
	s, ok, err := scalarString(v)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer, got %q", key, s)
	}
	return n, true, nil
}

// stringField reads a scalar as text, so a numeric query such as a part
// number is kept rather than dropped.
func stringField(req *structpb.Struct, key string) (string, error) {
	s, _, err := scalarString(req.GetFields()[key])
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidCriteria, key, err)
	}
	return strings.TrimSpace(s), nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// listingMap renders a listing for the wire. images are the already resolved
// image URLs.
func listingMap(l *domain.Listing, images []string) map[string]interface{} {
	m := map[string]interface{}{
		"id":                 l.ID,
		"slug":               l.Slug,
		"owner_id":           l.OwnerID,
		"category_id":        l.CategoryID,
		"title":              l.Title,
		"description":        l.Description,
		"brand":              l.Brand,
		"model":              l.Model,
		"condition":          string(l.Condition),
		"type":               string(l.Type),
		"year":               nil,
		"price":              l.Price,
		"currency":           l.Currency,
		"negotiable":         l.Negotiable,
		"delivery_available": l.DeliveryAvailable,
		"state":              l.State,
		"city":               l.City,
		"status":             string(l.Status),
		"published_at":       formatTime(l.PublishedAt),
		"expires_at":         formatTime(l.ExpiresAt),
		"verified":           l.Verified,
		"featured":           l.Featured,
		"images":             stringList(images),
		"tags":               stringList(l.Tags),
		"view_count":         l.ViewCount,
		"inquiry_count":      l.InquiryCount,
		"created_at":         l.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":         l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.Year != nil {
		m["year"] = *l.Year
	}
	return m
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func stringList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func pageMap(p discovery.ResultPage[*domain.Listing], items []interface{}) map[string]interface{} {
	return map[string]interface{}{
		"items":     items,
		"total":     p.Total,
		"page":      p.Page,
		"per_page":  p.PerPage,
		"last_page": p.LastPage(),
		"has_more":  p.HasMore(),
	}
}
