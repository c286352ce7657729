package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, slug, owner_id, category_id, title, description, brand, model, condition, type,
	year, price, currency, negotiable, delivery_available, state, city, status, published_at, expires_at,
	verified, featured, images, tags, view_count, inquiry_count, created_at, updated_at`

type ListingRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewListingRepository(pool *pgxpool.Pool, log *logger.Logger) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres: pool cannot be nil")
	}
	return &ListingRepository{pool: pool, logger: log.Named("PostgresListingRepository")}, nil
}

type listingRow struct {
	ID                int64      `db:"id"`
	Slug              string     `db:"slug"`
	OwnerID           string     `db:"owner_id"`
	CategoryID        int64      `db:"category_id"`
	Title             string     `db:"title"`
	Description       string     `db:"description"`
	Brand             string     `db:"brand"`
	Model             string     `db:"model"`
	Condition         string     `db:"condition"`
	Type              string     `db:"type"`
	Year              *int32     `db:"year"`
	Price             float64    `db:"price"`
	Currency          string     `db:"currency"`
	Negotiable        bool       `db:"negotiable"`
	DeliveryAvailable bool       `db:"delivery_available"`
	State             string     `db:"state"`
	City              string     `db:"city"`
	Status            string     `db:"status"`
	PublishedAt       *time.Time `db:"published_at"`
	ExpiresAt         *time.Time `db:"expires_at"`
	Verified          bool       `db:"verified"`
	Featured          bool       `db:"featured"`
	Images            []string   `db:"images"`
	Tags              []string   `db:"tags"`
	ViewCount         int64      `db:"view_count"`
	InquiryCount      int64      `db:"inquiry_count"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r *listingRow) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:                r.ID,
		Slug:              r.Slug,
		OwnerID:           r.OwnerID,
		CategoryID:        r.CategoryID,
		Title:             r.Title,
		Description:       r.Description,
		Brand:             r.Brand,
		Model:             r.Model,
		Condition:         domain.Condition(r.Condition),
		Type:              domain.ListingType(r.Type),
		Price:             r.Price,
		Currency:          r.Currency,
		Negotiable:        r.Negotiable,
		DeliveryAvailable: r.DeliveryAvailable,
		State:             r.State,
		City:              r.City,
		Status:            domain.ListingStatus(r.Status),
		PublishedAt:       r.PublishedAt,
		ExpiresAt:         r.ExpiresAt,
		Verified:          r.Verified,
		Featured:          r.Featured,
		Images:            r.Images,
		Tags:              r.Tags,
		ViewCount:         r.ViewCount,
		InquiryCount:      r.InquiryCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Year != nil {
		y := int(*r.Year)
		l.Year = &y
	}
	return l
}

func (r *ListingRepository) FindByQuery(ctx context.Context, q discovery.Query) ([]*domain.Listing, int64, error) {
	where, args, err := buildWhere(q.Predicate)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM listings "+where, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count listings", "error", err.Error())
		return nil, 0, fmt.Errorf("postgres: count listings: %w", err)
	}
	if int64(q.Window.Offset) >= total {
		return []*domain.Listing{}, total, nil
	}

	orderBy, err := buildOrderBy(q.Ordering)
	if err != nil {
		return nil, 0, err
	}
	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM listings %s %s LIMIT $%d OFFSET $%d",
		selectColumns, where, orderBy, n+1, n+2)
	items, err := r.query(ctx, query, append(args, int64(q.Window.Limit), int64(q.Window.Offset))...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepository) FindTop(ctx context.Context, p discovery.Predicate, o discovery.Ordering, limit int) ([]*domain.Listing, error) {
	if limit <= 0 {
		return []*domain.Listing{}, nil
	}
	where, args, err := buildWhere(p)
	if err != nil {
		return nil, err
	}
	orderBy, err := buildOrderBy(o)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM listings %s %s LIMIT $%d", selectColumns, where, orderBy, len(args)+1)
	return r.query(ctx, query, append(args, int64(limit))...)
}

func (r *ListingRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query listings", "error", err.Error())
		return nil, fmt.Errorf("postgres: query listings: %w", err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[listingRow])
	if err != nil {
		r.logger.Error("failed to scan listings", "error", err.Error())
		return nil, fmt.Errorf("postgres: scan listings: %w", err)
	}
	out := make([]*domain.Listing, 0, len(collected))
	for _, row := range collected {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+selectColumns+" FROM listings WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("postgres: find listing %d: %w", id, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[listingRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("failed to get listing", "listing_id", id, "error", err.Error())
		return nil, fmt.Errorf("postgres: find listing %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *ListingRepository) IncrementViewCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, id, "UPDATE listings SET view_count = view_count + 1 WHERE id = $1")
}

func (r *ListingRepository) IncrementInquiryCount(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, id, "UPDATE listings SET inquiry_count = inquiry_count + 1 WHERE id = $1")
}

func (r *ListingRepository) increment(ctx context.Context, id int64, stmt string) (bool, error) {
	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		r.logger.Error("failed to increment counter", "listing_id", id, "error", err.Error())
		return false, fmt.Errorf("postgres: increment counter of listing %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// advanceSequenceSQL lifts the id sequence to at least $1 and never lowers it.
const advanceSequenceSQL = `SELECT setval(pg_get_serial_sequence('listings', 'id'),
	GREATEST($1::bigint, (SELECT last_value FROM listings_id_seq)))`

func (r *ListingRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, "SELECT nextval(pg_get_serial_sequence('listings', 'id'))").Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: next listing id: %w", err)
	}
	return id, nil
}

func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	var year *int32
	if l.Year != nil {
		y := int32(*l.Year)
		year = &y
	}
	images, tags := l.Images, l.Tags
	if images == nil {
		images = []string{}
	}
	if tags == nil {
		tags = []string{}
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO listings (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28)`,
		l.ID, l.Slug, l.OwnerID, l.CategoryID, l.Title, l.Description, l.Brand, l.Model,
		string(l.Condition), string(l.Type), year, l.Price, l.Currency, l.Negotiable, l.DeliveryAvailable,
		l.State, l.City, string(l.Status), l.PublishedAt, l.ExpiresAt, l.Verified, l.Featured,
		images, tags, l.ViewCount, l.InquiryCount, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert listing", "listing_id", l.ID, "error", err.Error())
		return fmt.Errorf("postgres: insert listing %d: %w", l.ID, err)
	}

	// An explicit id does not move the BIGSERIAL sequence on its own.
	if _, err := r.pool.Exec(ctx, advanceSequenceSQL, l.ID); err != nil {
		r.logger.Error("failed to advance listing id sequence", "listing_id", l.ID, "error", err.Error())
		return fmt.Errorf("postgres: advance listing sequence to %d: %w", l.ID, err)
	}
	return nil
}
