// Package events delivers report lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ilisirali/EA/internal/domain"
)

// Topic carrying all report lifecycle events, partitioned by user.
const topic = "report_events"

// ReportCreated is emitted after a report is persisted.
type ReportCreated struct {
	ReportID     string    `json:"report_id"`
	UserID       string    `json:"user_id"`
	ActivityDate time.Time `json:"activity_date"`
	Weekly       bool      `json:"weekly"`
	TotalHours   float64   `json:"total_hours"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportDeleted is emitted after a report is removed.
type ReportDeleted struct {
	ReportID  string    `json:"report_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Publisher writes report events to Kafka. Delivery is best effort: a
// publish failure is logged, never surfaced to the request path.
type Publisher struct {
	logger *log.Logger

	mu     sync.Mutex
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		logger: log.Default(),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// ReportCreated publishes the created event.
func (p *Publisher) ReportCreated(ctx context.Context, report domain.Report) {
	parsed := domain.ParseDescription(report.Description)
	p.publish(ctx, "report.created", report.UserID, ReportCreated{
		ReportID:     report.ID,
		UserID:       report.UserID,
		ActivityDate: report.ActivityDate,
		Weekly:       parsed.IsWeekly(),
		TotalHours:   parsed.TotalHours(),
		CreatedAt:    report.CreatedAt,
	})
}

// ReportDeleted publishes the deleted event.
func (p *Publisher) ReportDeleted(ctx context.Context, reportID, userID string) {
	p.publish(ctx, "report.deleted", userID, ReportDeleted{
		ReportID:  reportID,
		UserID:    userID,
		DeletedAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, eventType, partitionKey string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Printf("events: marshal %s: %v", eventType, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(partitionKey),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("events: publish %s: %v", eventType, err)
	}
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Close()
}
