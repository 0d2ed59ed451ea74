package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	domainerrors "shenanigigs/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingConn struct {
	subject string
	data    []byte
	err     error
	closed  bool
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return c.err
}

func (c *recordingConn) Close() { c.closed = true }

func TestPublishPostingsChanged(t *testing.T) {
	conn := &recordingConn{}
	pub := NewPublisher(conn, "postings.changed", zaptest.NewLogger(t))

	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, pub.PublishPostingsChanged(context.Background(), PostingsChanged{
		Source: "seed",
		Count:  12,
		At:     at,
	}))

	assert.Equal(t, "postings.changed", conn.subject)
	var got PostingsChanged
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, PostingsChanged{Source: "seed", Count: 12, At: at}, got)

	pub.Close()
	assert.True(t, conn.closed)
}

func TestPublishPostingsChangedFailure(t *testing.T) {
	conn := &recordingConn{err: errors.New("nats: connection closed")}
	pub := NewPublisher(conn, "postings.changed", zaptest.NewLogger(t))

	err := pub.PublishPostingsChanged(context.Background(), PostingsChanged{Source: "seed"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTypeUnavailable))
}
