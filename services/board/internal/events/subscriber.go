package events

import (
	"context"
	"encoding/json"
	"fmt"

	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/messaging"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const queueGroup = "board-service"

// Reloader reloads every live board.
type Reloader interface {
	ReloadAll(ctx context.Context) int
}

type Handler struct {
	logger   *zap.Logger
	nc       *nats.Conn
	tracer   trace.Tracer
	reloader Reloader
	subject  string
	sub      *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, reloader Reloader, subject string) *Handler {
	return &Handler{
		logger:   logger,
		nc:       nc,
		tracer:   tracer,
		reloader: reloader,
		subject:  subject,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(h.subject, queueGroup, h.handleRefresh)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.subject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions", zap.String("subject", h.subject))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Unsubscribe()
		},
	})

	return nil
}

func (h *Handler) handleRefresh(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleRefresh")
	defer span.End()

	var event messaging.PostingsChanged
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			h.logger.Warn("Ignoring malformed refresh payload",
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
	}
	span.SetAttributes(telemetry.String("refresh.source", event.Source))

	reloaded := h.reloader.ReloadAll(ctx)

	h.logger.Info("Reloaded boards after postings change",
		zap.String("subject", msg.Subject),
		zap.String("source", event.Source),
		zap.Int("boards", reloaded),
	)
}
