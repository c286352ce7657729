package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	listingCollectionName = "listings"
	counterCollectionName = "counters"
	listingCounterID      = "listing_id"
)

type ListingRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository ensures the indexes the discovery queries rely on.
// Index creation failures are logged and do not stop startup.
func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "featured", Value: -1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "view_count", Value: -1}, {Key: "inquiry_count", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("ListingRepository: failed to create indexes", "collection", listingCollectionName, "error", err.Error())
	} else {
		log.Info("ListingRepository: indexes ensured", "collection", listingCollectionName)
	}

	return &ListingRepository{
		collection: collection,
		counters:   db.Collection(counterCollectionName),
		logger:     log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) FindByQuery(ctx context.Context, q discovery.Query) ([]*domain.Listing, int64, error) {
	filter, err := BuildFilter(q.Predicate)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("failed to count listings", "error", err.Error())
		return nil, 0, fmt.Errorf("mongodb: count listings: %w", err)
	}
	if int64(q.Window.Offset) >= total {
		return []*domain.Listing{}, total, nil
	}

	opts := options.Find().
		SetSort(BuildSort(q.Ordering)).
		SetSkip(int64(q.Window.Offset)).
		SetLimit(int64(q.Window.Limit))
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepository) FindTop(ctx context.Context, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error) {
	if limit <= 0 {
		return []*domain.Listing{}, nil
	}
	filter, err := BuildFilter(p)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter, options.Find().SetSort(BuildSort(o)).SetLimit(int64(limit)))
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("failed to find listings", "error", err.Error())
		return nil, fmt.Errorf("mongodb: find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("failed to decode listings", "error", err.Error())
		return nil, fmt.Errorf("mongodb: decode listings: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("failed to get listing", "listing_id", id, "error", err.Error())
		return nil, fmt.Errorf("mongodb: find listing %d: %w", id, err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) IncrementViewCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, id, "view_count")
}

func (r *ListingRepository) IncrementInquiryCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, id, "inquiry_count")
}

// increment applies a server-side $inc so concurrent calls never lose an update.
func (r *ListingRepository) increment(ctx context.Context, id int64, field string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: int64(1)}})
	if err != nil {
		r.logger.Error("failed to increment counter", "listing_id", id, "field", field, "error", err.Error())
		return false, fmt.Errorf("mongodb: increment %s of listing %d: %w", field, id, err)
	}
	return res.MatchedCount > 0, nil
}

// NextID draws from a sequence document in the counters collection.
func (r *ListingRepository) NextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": listingCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		r.logger.Error("failed to reserve listing id", "error", err.Error())
		return 0, fmt.Errorf("mongodb: next listing id: %w", err)
	}
	return counter.Seq, nil
}

func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	if _, err := r.collection.InsertOne(ctx, toListingDocument(l)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongodb: listing %d already exists: %w", l.ID, err)
		}
		r.logger.Error("failed to insert listing", "listing_id", l.ID, "error", err.Error())
		return fmt.Errorf("mongodb: insert listing %d: %w", l.ID, err)
	}

	// Keep the sequence at or above every stored id so NextID never hands out
	// an id that an explicit insert already took.
	_, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": listingCounterID},
		bson.M{"$max": bson.M{"seq": l.ID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.Error("failed to advance listing id counter", "listing_id", l.ID, "error", err.Error())
		return fmt.Errorf("mongodb: advance listing counter to %d: %w", l.ID, err)
	}
	return nil
}
