package source

import (
	"context"
	"fmt"

	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/config"
	"shenanigigs/services/board/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("shenanigigs/board/source")

// Source is the remote "get all job postings" operation. Failures are
// LoadFailure domain errors, optionally carrying a public message.
type Source interface {
	GetAllJobPostings(ctx context.Context) ([]models.Posting, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) ([]models.Posting, error)

func (f Func) GetAllJobPostings(ctx context.Context) ([]models.Posting, error) {
	return f(ctx)
}

// New picks the Source named by cfg.PostingsSource. conn is only used for the
// ClickHouse source and may be nil otherwise.
func New(cfg *config.Config, conn clickhouse.Conn, logger *zap.Logger) (Source, error) {
	switch cfg.PostingsSource {
	case config.SourceHTTP:
		return NewHTTPSource(logger, cfg), nil
	case config.SourceClickHouse:
		if conn == nil {
			return nil, fmt.Errorf("clickhouse source requires a connection")
		}
		return NewClickHouseSource(conn, logger), nil
	default:
		return nil, fmt.Errorf("unknown postings source %q", cfg.PostingsSource)
	}
}
