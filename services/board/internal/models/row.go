package models

import (
	"encoding/json"
	"time"
)

// AllDepartments is the synthetic selection that disables filtering.
const AllDepartments = "All"

// Row is the flattened, display-ready projection of a Posting.
type Row struct {
	ID            string
	JobTitle      *string
	Department    *string
	Location      *string
	OpenPositions float64
	PostingDate   *time.Time
}

func (r Row) MarshalJSON() ([]byte, error) {
	out := struct {
		ID            string  `json:"id"`
		JobTitle      *string `json:"jobTitle"`
		Department    *string `json:"department"`
		Location      *string `json:"location"`
		OpenPositions float64 `json:"openPositions"`
		PostingDate   *string `json:"postingDate"`
	}{
		ID:            r.ID,
		JobTitle:      r.JobTitle,
		Department:    r.Department,
		Location:      r.Location,
		OpenPositions: r.OpenPositions,
	}
	if r.PostingDate != nil {
		s := r.PostingDate.Format(DateLayout)
		out.PostingDate = &s
	}
	return json.Marshal(out)
}

type DepartmentOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ColumnType string

const (
	ColumnText   ColumnType = "text"
	ColumnNumber ColumnType = "number"
	ColumnDate   ColumnType = "date"
)

type Column struct {
	Label     string     `json:"label"`
	FieldName string     `json:"fieldName"`
	Type      ColumnType `json:"type"`
}

// Columns returns the table descriptor for the board.
func Columns() []Column {
	return []Column{
		{Label: "Job Title", FieldName: "jobTitle", Type: ColumnText},
		{Label: "Department", FieldName: "department", Type: ColumnText},
		{Label: "Location", FieldName: "location", Type: ColumnText},
		{Label: "Open Positions", FieldName: "openPositions", Type: ColumnNumber},
		{Label: "Posting Date", FieldName: "postingDate", Type: ColumnDate},
	}
}

// Str returns a pointer to s. Handy for building fixtures and scanning.
func Str(s string) *string {
	return &s
}
