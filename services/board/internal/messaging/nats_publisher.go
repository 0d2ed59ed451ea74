package messaging

import (
	"context"
	"encoding/json"
	"time"

	"shenanigigs/common/errors"
	"shenanigigs/common/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("shenanigigs/board/messaging")

// PostingsChanged announces that the backing postings were modified and
// boards should reload.
type PostingsChanged struct {
	Source string    `json:"source"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type Publisher interface {
	PublishPostingsChanged(ctx context.Context, event PostingsChanged) error
	Close()
}

type natsPublisher struct {
	conn    Conn
	subject string
	logger  *zap.Logger
}

func Connect(url string, timeout time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return conn, nil
}

func NewPublisher(conn Conn, subject string, logger *zap.Logger) Publisher {
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}
}

func (p *natsPublisher) PublishPostingsChanged(ctx context.Context, event PostingsChanged) error {
	_, span := tracer.Start(ctx, "PublishPostingsChanged")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling postings changed event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish postings changed",
			zap.String("source", event.Source),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published postings changed",
		zap.String("source", event.Source),
		zap.Int("count", event.Count),
		zap.String("subject", p.subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
