package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"shenanigigs/common/errors"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("shenanigigs/board/seed")

type PositionRow struct {
	ID            string
	Title         *string
	Department    *string
	Location      *string
	OpenPositions *float64
	OpenDate      *time.Time
}

type PostingRow struct {
	ID         string
	PositionID *string
	PostedAt   time.Time
}

// Rows splits postings into the rows stored in the positions and
// job_postings tables. Postings without an id get a fresh UUID. posted_at
// advances one microsecond per posting so reads keep the input order.
func Rows(postings []models.Posting, now time.Time) ([]PositionRow, []PostingRow) {
	positions := make([]PositionRow, 0, len(postings))
	jobPostings := make([]PostingRow, 0, len(postings))

	base := now.UTC().Truncate(time.Microsecond)
	for i, p := range postings {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		row := PostingRow{ID: id, PostedAt: base.Add(time.Duration(i) * time.Microsecond)}

		if p.Position != nil {
			positionID := uuid.NewString()
			row.PositionID = &positionID
			positions = append(positions, PositionRow{
				ID:            positionID,
				Title:         p.Position.Title,
				Department:    p.Position.Department,
				Location:      p.Position.Location,
				OpenPositions: p.Position.OpenPositions,
				OpenDate:      p.Position.OpenDate,
			})
		}
		jobPostings = append(jobPostings, row)
	}

	return positions, jobPostings
}

// Decode reads a JSON array of postings using the same lenient rules as
// the HTTP source.
func Decode(r io.Reader) ([]models.Posting, error) {
	var postings []models.Posting
	if err := json.NewDecoder(r).Decode(&postings); err != nil {
		return nil, errors.InvalidInput("decoding seed postings", err)
	}
	return postings, nil
}

// Samples returns a small fixed board used when no seed file is given.
func Samples() []models.Posting {
	date := models.ParseDate
	num := func(f float64) *float64 { return &f }

	return []models.Posting{
		{ID: "posting-1", Position: &models.Position{
			Title: models.Str("Backend Engineer"), Department: models.Str("Engineering"),
			Location: models.Str("Remote"), OpenPositions: num(3), OpenDate: date("2024-05-01"),
		}},
		{ID: "posting-2", Position: &models.Position{
			Title: models.Str("Account Executive"), Department: models.Str("Sales"),
			Location: models.Str("Berlin"), OpenPositions: num(2), OpenDate: date("2024-05-12"),
		}},
		{ID: "posting-3", Position: &models.Position{
			Title: models.Str("Site Reliability Engineer"), Department: models.Str("Engineering"),
			Location: models.Str("Lisbon"), OpenPositions: num(1), OpenDate: date("2024-06-03"),
		}},
		{ID: "posting-4", Position: &models.Position{
			Title: models.Str("Recruiter"), Department: models.Str("People"),
		}},
		{ID: "posting-5"},
	}
}

// Store writes postings to ClickHouse in two batches and returns how many
// job postings were written.
func Store(ctx context.Context, conn clickhouse.Conn, postings []models.Posting, logger *zap.Logger) (int, error) {
	ctx, span := tracer.Start(ctx, "Store")
	defer span.End()

	positions, jobPostings := Rows(postings, time.Now())
	span.SetAttributes(
		telemetry.Int("seed.positions", len(positions)),
		telemetry.Int("seed.postings", len(jobPostings)),
	)

	if len(positions) > 0 {
		batch, err := conn.PrepareBatch(ctx, `
			INSERT INTO positions (id, title, department, location, open_positions, open_date)
		`)
		if err != nil {
			span.RecordError(err)
			return 0, errors.Internal("preparing positions batch", err)
		}
		for _, p := range positions {
			if err := batch.Append(p.ID, p.Title, p.Department, p.Location, p.OpenPositions, p.OpenDate); err != nil {
				return 0, errors.Internal(fmt.Sprintf("appending position %s", p.ID), err)
			}
		}
		if err := batch.Send(); err != nil {
			span.RecordError(err)
			return 0, errors.Internal("inserting positions", err)
		}
	}

	if len(jobPostings) > 0 {
		batch, err := conn.PrepareBatch(ctx, `
			INSERT INTO job_postings (id, position_id, posted_at)
		`)
		if err != nil {
			span.RecordError(err)
			return 0, errors.Internal("preparing job_postings batch", err)
		}
		for _, p := range jobPostings {
			if err := batch.Append(p.ID, p.PositionID, p.PostedAt); err != nil {
				return 0, errors.Internal(fmt.Sprintf("appending posting %s", p.ID), err)
			}
		}
		if err := batch.Send(); err != nil {
			span.RecordError(err)
			return 0, errors.Internal("inserting job postings", err)
		}
	}

	logger.Info("Seeded job postings",
		zap.Int("positions", len(positions)),
		zap.Int("postings", len(jobPostings)),
	)
	return len(jobPostings), nil
}
