package mongodb

import (
	"fmt"
	"regexp"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"go.mongodb.org/mongo-driver/bson"
)

// documentField maps a discovery field onto its document key.
func documentField(f discovery.Field) string {
	if f == discovery.FieldID {
		return "_id"
	}
	return string(f)
}

// BuildFilter translates a predicate into a query document. Every clause
// becomes one element of a top-level $and; the disjunction, if any, is one
// more element holding an $or.
func BuildFilter(p discovery.Predicate) (bson.M, error) {
	all := p.All()
	anyOf := p.Any()
	if len(all) == 0 && len(anyOf) == 0 {
		return bson.M{}, nil
	}

	and := make(bson.A, 0, len(all)+1)
	for _, c := range all {
		doc, err := clauseFilter(c)
		if err != nil {
			return nil, err
		}
		and = append(and, doc)
	}
	if len(anyOf) > 0 {
		or := make(bson.A, 0, len(anyOf))
		for _, c := range anyOf {
			doc, err := clauseFilter(c)
			if err != nil {
				return nil, err
			}
			or = append(or, doc)
		}
		and = append(and, bson.M{"$or": or})
	}
	return bson.M{"$and": and}, nil
}

func clauseFilter(c discovery.Clause) (bson.M, error) {
	key := documentField(c.Field)
	switch c.Op {
	case discovery.OpEq:
		return bson.M{key: c.Value}, nil
	case discovery.OpGte:
		return bson.M{key: bson.M{"$gte": c.Value}}, nil
	case discovery.OpLte:
		return bson.M{key: bson.M{"$lte": c.Value}}, nil
	case discovery.OpNullOrGt:
		// {key: nil} also matches a missing key
		return bson.M{"$or": bson.A{
			bson.M{key: nil},
			bson.M{key: bson.M{"$gt": c.Value}},
		}}, nil
	case discovery.OpContainsFold:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("mongodb: %s on %s needs a string, got %T", c.Op, c.Field, c.Value)
		}
		return bson.M{key: bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}}, nil
	case discovery.OpHasElemFold:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("mongodb: %s on %s needs a string, got %T", c.Op, c.Field, c.Value)
		}
		// a regex on an array field matches when any element matches
		return bson.M{key: bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}}, nil
	case discovery.OpNotEmpty:
		return bson.M{key + ".0": bson.M{"$exists": true}}, nil
	default:
		return nil, fmt.Errorf("mongodb: unsupported operator %s on %s", c.Op, c.Field)
	}
}

// BuildSort translates an ordering into a sort document. MongoDB sorts null
// and missing values lowest, which is the ordering the engine expects.
func BuildSort(o discovery.Ordering) bson.D {
	out := make(bson.D, 0, len(o))
	for _, t := range o {
		dir := 1
		if t.Dir == discovery.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: documentField(t.Field), Value: dir})
	}
	return out
}
