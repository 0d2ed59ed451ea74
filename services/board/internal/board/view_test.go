package board

import (
	"fmt"
	"testing"
	"time"

	"shenanigigs/services/board/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posting(id string, dept *string) models.Posting {
	return models.Posting{ID: id, Position: &models.Position{
		Title:      models.Str("Title " + id),
		Department: dept,
	}}
}

func TestMapPosting(t *testing.T) {
	open := 3.0
	date := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	row := MapPosting(models.Posting{ID: "a1", Position: &models.Position{
		Title:         models.Str("SRE"),
		Department:    models.Str("Eng"),
		Location:      models.Str("Lisbon"),
		OpenPositions: &open,
		OpenDate:      &date,
	}})

	assert.Equal(t, "a1", row.ID)
	assert.Equal(t, "SRE", *row.JobTitle)
	assert.Equal(t, "Eng", *row.Department)
	assert.Equal(t, "Lisbon", *row.Location)
	assert.Equal(t, 3.0, row.OpenPositions)
	assert.Equal(t, date, *row.PostingDate)
}

func TestMapPostingAbsentReference(t *testing.T) {
	row := MapPosting(models.Posting{ID: "orphan"})
	assert.Equal(t, models.Row{ID: "orphan"}, row)
}

func TestMapPostingOpenPositionsDefaultsToZero(t *testing.T) {
	zero := 0.0
	assert.Equal(t, 0.0, MapPosting(models.Posting{ID: "a", Position: &models.Position{}}).OpenPositions)
	assert.Equal(t, 0.0, MapPosting(models.Posting{ID: "b", Position: &models.Position{OpenPositions: &zero}}).OpenPositions)
}

func TestMapPostingsKeepsCountAndOrder(t *testing.T) {
	for _, n := range []int{0, 1, 7, 50} {
		postings := make([]models.Posting, n)
		for i := range postings {
			if i%3 == 0 {
				postings[i] = models.Posting{ID: fmt.Sprint(i)}
			} else {
				postings[i] = posting(fmt.Sprint(i), models.Str("D"))
			}
		}

		rows := MapPostings(postings)
		require.Len(t, rows, n)
		for i := range rows {
			assert.Equal(t, postings[i].ID, rows[i].ID)
		}
	}
}

func TestBuildDepartmentOptions(t *testing.T) {
	rows := MapPostings([]models.Posting{
		posting("1", models.Str("Eng")),
		posting("2", models.Str("Sales")),
		posting("3", models.Str("Eng")),
		posting("4", nil),
		posting("5", models.Str("")),
		{ID: "6"},
		posting("7", models.Str("eng")),
	})

	assert.Equal(t, []models.DepartmentOption{
		{Label: "All", Value: "All"},
		{Label: "Eng", Value: "Eng"},
		{Label: "Sales", Value: "Sales"},
		{Label: "eng", Value: "eng"},
	}, BuildDepartmentOptions(rows))
}

func TestBuildDepartmentOptionsAlwaysStartsWithAll(t *testing.T) {
	all := models.DepartmentOption{Label: "All", Value: "All"}

	assert.Equal(t, []models.DepartmentOption{all}, BuildDepartmentOptions(nil))
	assert.Equal(t, all, BuildDepartmentOptions(MapPostings([]models.Posting{posting("1", models.Str("Zeta"))}))[0])
}

func TestFilterRowsAll(t *testing.T) {
	rows := MapPostings([]models.Posting{
		posting("1", models.Str("Eng")),
		posting("2", nil),
		posting("3", models.Str("Sales")),
	})

	assert.Equal(t, rows, FilterRows(rows, models.AllDepartments))
}

func TestFilterRowsExactMatch(t *testing.T) {
	rows := MapPostings([]models.Posting{
		posting("1", models.Str("Eng")),
		posting("2", models.Str("Sales")),
		posting("3", models.Str("Eng")),
		posting("4", nil),
		posting("5", models.Str("eng")),
		posting("6", models.Str("Engineering")),
	})

	filtered := FilterRows(rows, "Eng")
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, "Eng", *r.Department)
	}
	assert.Equal(t, "1", filtered[0].ID)
	assert.Equal(t, "3", filtered[1].ID)

	assert.Empty(t, FilterRows(rows, "Marketing"))
	assert.Empty(t, FilterRows(rows, ""))
	assert.Empty(t, FilterRows(nil, "Eng"))
}
