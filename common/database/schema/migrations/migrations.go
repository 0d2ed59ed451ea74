package migrations

import "shenanigigs/common/database/schema"

var CreatePositionsTable = schema.Migration{
	Version:     1,
	Description: "Create positions table",
	Up: []string{`
		CREATE TABLE IF NOT EXISTS positions (
			id String,
			title Nullable(String),
			department Nullable(String),
			location Nullable(String),
			open_positions Nullable(Float64),
			open_date Nullable(Date),
			updated_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY id
	`},
	Down: []string{`DROP TABLE IF EXISTS positions`},
}

var CreateJobPostingsTable = schema.Migration{
	Version:     2,
	Description: "Create job_postings table",
	Up: []string{`
		CREATE TABLE IF NOT EXISTS job_postings (
			id String,
			position_id Nullable(String),
			posted_at DateTime64(6, 'UTC'),
			updated_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY id
	`},
	Down: []string{`DROP TABLE IF EXISTS job_postings`},
}

// All lists every migration in version order.
var All = []schema.Migration{
	CreatePositionsTable,
	CreateJobPostingsTable,
}
