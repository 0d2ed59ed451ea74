package source

import (
	"context"
	"time"

	"shenanigigs/common/errors"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

const selectPostingsQuery = `
	SELECT
		p.id,
		pos.id,
		pos.title,
		pos.department,
		pos.location,
		pos.open_positions,
		pos.open_date
	FROM job_postings AS p FINAL
	LEFT JOIN (SELECT * FROM positions FINAL) AS pos ON p.position_id = pos.id
	ORDER BY p.posted_at, p.id
`

type ClickHouseSource struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewClickHouseSource(conn clickhouse.Conn, logger *zap.Logger) *ClickHouseSource {
	return &ClickHouseSource{
		conn:   conn,
		logger: logger,
	}
}

func (s *ClickHouseSource) GetAllJobPostings(ctx context.Context) ([]models.Posting, error) {
	ctx, span := tracer.Start(ctx, "ClickHouseSource.GetAllJobPostings")
	defer span.End()

	ctx = clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"join_use_nulls": 1,
	}))

	rows, err := s.conn.Query(ctx, selectPostingsQuery)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to query job postings", zap.Error(err))
		return nil, errors.LoadFailure("querying job postings", err)
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		var (
			id            string
			positionID    *string
			title         *string
			department    *string
			location      *string
			openPositions *float64
			openDate      *time.Time
		)
		if err := rows.Scan(&id, &positionID, &title, &department, &location, &openPositions, &openDate); err != nil {
			span.RecordError(err)
			s.logger.Error("failed to scan job posting row", zap.Error(err))
			return nil, errors.LoadFailure("scanning job posting", err)
		}
		postings = append(postings, postingFromColumns(id, positionID, title, department, location, openPositions, openDate))
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, errors.LoadFailure("iterating job postings", err)
	}

	span.SetAttributes(telemetry.Int("postings.count", len(postings)))
	s.logger.Debug("queried job postings", zap.Int("count", len(postings)))
	return postings, nil
}

// postingFromColumns builds a Posting from one joined row. A NULL position id
// means the join found no position.
func postingFromColumns(id string, positionID, title, department, location *string, openPositions *float64, openDate *time.Time) models.Posting {
	posting := models.Posting{ID: id}
	if positionID == nil {
		return posting
	}

	posting.Position = &models.Position{
		Title:         title,
		Department:    department,
		Location:      location,
		OpenPositions: openPositions,
	}
	if openDate != nil {
		d := time.Date(openDate.Year(), openDate.Month(), openDate.Day(), 0, 0, 0, 0, time.UTC)
		posting.Position.OpenDate = &d
	}
	return posting
}
