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
)

const (
	SubjectInquiryCreated = "listing.inquiry.created"
	// SubjectListingChanged carries status and content changes made by the
	// listing management service.
	SubjectListingChanged = "listing.changed"
	queueGroup            = "catalog-service"
	handleTimeout         = 5 * time.Second
)

type listingEvent struct {
	ListingID int64 `json:"listing_id"`
}

// InquiryCreatedEvent is published by the messaging service when a buyer
// contacts a seller about a listing.
type InquiryCreatedEvent = listingEvent

// ListingChangedEvent announces that a stored listing was updated.
type ListingChangedEvent = listingEvent

type InquiryRecorder interface {
	RecordInquiry(ctx context.Context, id int64) error
}

type ListingInvalidator interface {
	Invalidate(ctx context.Context, id int64) error
}

// listingSubscriber consumes events that name one listing id. Instances share
// a queue group so each event is handled once.
type listingSubscriber struct {
	conn    *nats.Conn
	subject string
	apply   func(ctx context.Context, id int64) error
	logger  *logger.Logger
	sub     *nats.Subscription
}

func (s *listingSubscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(s.subject, queueGroup, s.onMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub
	s.logger.Info("subscribed", "subject", s.subject, "queue", queueGroup)
	return nil
}

func (s *listingSubscriber) onMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Header))
	}
	if err := s.handle(ctx, msg.Data); err != nil {
		s.logger.Warn("dropping event", "subject", msg.Subject, "error", err.Error())
	}
}

func (s *listingSubscriber) handle(ctx context.Context, data []byte) error {
	ctx, span := tracer.Start(ctx, "NATS.Consume "+s.subject)
	defer span.End()

	var ev listingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode %s event: %w", s.subject, err)
	}
	if ev.ListingID <= 0 {
		return fmt.Errorf("%s event without listing id", s.subject)
	}
	span.SetAttributes(attribute.Int64("listing.id", ev.ListingID))
	return s.apply(ctx, ev.ListingID)
}

// Stop drains the subscription so in-flight messages finish.
func (s *listingSubscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

// InquirySubscriber counts inquiries announced on SubjectInquiryCreated.
type InquirySubscriber struct {
	listingSubscriber
}

func NewInquirySubscriber(conn *nats.Conn, recorder InquiryRecorder, log *logger.Logger) *InquirySubscriber {
	s := &InquirySubscriber{listingSubscriber{
		conn:    conn,
		subject: SubjectInquiryCreated,
		logger:  log.Named("InquirySubscriber"),
	}}
	if recorder != nil {
		s.apply = recorder.RecordInquiry
	}
	return s
}

// ChangeSubscriber evicts cached listings named on SubjectListingChanged, so an
// archived or withdrawn listing stops being served from the cache.
type ChangeSubscriber struct {
	listingSubscriber
}

func NewChangeSubscriber(conn *nats.Conn, invalidator ListingInvalidator, log *logger.Logger) *ChangeSubscriber {
	s := &ChangeSubscriber{listingSubscriber{
		conn:    conn,
		subject: SubjectListingChanged,
		logger:  log.Named("ChangeSubscriber"),
	}}
	if invalidator != nil {
		s.apply = invalidator.Invalidate
	}
	return s
}
