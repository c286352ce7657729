package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const SubjectListingViewed = "listing.viewed"

var tracer = otel.Tracer("catalog-service/nats")

// ListingViewedEvent is the payload published after a view is recorded.
type ListingViewedEvent struct {
	ID       int64     `json:"id"`
	ViewedAt time.Time `json:"viewed_at"`
}

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type Publisher struct {
	conn   msgPublisher
	logger *logger.Logger
}

func NewPublisher(conn *nats.Conn, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, logger: log.Named("NATSPublisher")}
}

func (p *Publisher) PublishListingViewed(ctx context.Context, id int64, at time.Time) error {
	return p.Publish(ctx, SubjectListingViewed, ListingViewedEvent{ID: id, ViewedAt: at.UTC()})
}

// Publish sends data as JSON and carries the current trace context in the headers.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish "+subject)
	defer span.End()
	span.SetAttributes(attribute.String("messaging.destination.name", subject))

	payload, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = payload
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("failed to publish message", "subject", subject, "error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Debug("message published", "subject", subject, "data_size_bytes", len(payload))
	return nil
}
