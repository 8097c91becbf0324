// Package events publishes delivery lifecycle events to NATS for downstream
// consumers (audit trails, notification fan-out). Publishing is best-effort:
// an unreachable broker never fails the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Subjects for lifecycle events.
const (
	SubjectDeliverySent      = "proofpost.delivery.sent"
	SubjectDeliveryDelivered = "proofpost.delivery.delivered"
	SubjectDeliveryOpened    = "proofpost.delivery.opened"
	SubjectReceiptIssued     = "proofpost.receipt.issued"
	SubjectServiceInitiated  = "proofpost.service.initiated"
	SubjectServiceFiled      = "proofpost.service.filed"
)

// Publisher emits lifecycle events. Implementations must be non-blocking in
// effect: failures are logged, not returned into the request path.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{})
	Close()
}

// envelope wraps every published event.
type envelope struct {
	EventID   string      `json:"eventId"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NATSPublisher publishes to a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// Config holds NATS publisher configuration.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "proofpost-events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload interface{}) {
	if err := ctx.Err(); err != nil {
		return
	}
	data, err := json.Marshal(envelope{
		EventID:   uuid.NewString(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		slog.Warn("failed to encode event", slog.String("subject", subject), slog.String("error", err.Error()))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		slog.Warn("failed to publish event", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoOpPublisher drops all events. Used when eventing is disabled.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(context.Context, string, interface{}) {}
func (NoOpPublisher) Close()                                       {}
