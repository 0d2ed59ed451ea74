package board

import (
	"shenanigigs/services/board/internal/models"
)

// MapPosting flattens one Posting. Absent or zero open positions both map to 0.
func MapPosting(p models.Posting) models.Row {
	row := models.Row{ID: p.ID}
	pos := p.Position
	if pos == nil {
		return row
	}

	row.JobTitle = pos.Title
	row.Department = pos.Department
	row.Location = pos.Location
	if pos.OpenPositions != nil {
		row.OpenPositions = *pos.OpenPositions
	}
	row.PostingDate = pos.OpenDate
	return row
}

// MapPostings maps every posting, one row each, in order.
func MapPostings(postings []models.Posting) []models.Row {
	rows := make([]models.Row, len(postings))
	for i, p := range postings {
		rows[i] = MapPosting(p)
	}
	return rows
}

// BuildDepartmentOptions returns "All" followed by each distinct non-empty
// department in first-seen order.
func BuildDepartmentOptions(rows []models.Row) []models.DepartmentOption {
	options := []models.DepartmentOption{
		{Label: models.AllDepartments, Value: models.AllDepartments},
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		if row.Department == nil || *row.Department == "" {
			continue
		}
		dept := *row.Department
		if seen[dept] {
			continue
		}
		seen[dept] = true
		options = append(options, models.DepartmentOption{Label: dept, Value: dept})
	}

	return options
}

// FilterRows narrows rows to those whose department equals selected exactly.
// Selecting "All" returns rows unchanged.
func FilterRows(rows []models.Row, selected string) []models.Row {
	if selected == models.AllDepartments {
		return rows
	}

	filtered := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if row.Department != nil && *row.Department == selected {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
