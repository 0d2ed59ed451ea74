package events

import (
	"context"
	"testing"

	"shenanigigs/common/telemetry"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type countingReloader struct {
	calls int
}

func (r *countingReloader) ReloadAll(ctx context.Context) int {
	r.calls++
	return 3
}

func TestHandleRefreshReloads(t *testing.T) {
	reloader := &countingReloader{}
	h := NewHandler(zaptest.NewLogger(t), nil, telemetry.GetTracer("test"), reloader, "postings.changed")

	h.handleRefresh(&nats.Msg{
		Subject: "postings.changed",
		Data:    []byte(`{"source":"seed","count":4,"at":"2024-07-01T08:00:00Z"}`),
	})
	h.handleRefresh(&nats.Msg{Subject: "postings.changed"})
	h.handleRefresh(&nats.Msg{Subject: "postings.changed", Data: []byte(`not json`)})

	assert.Equal(t, 3, reloader.calls)
}
