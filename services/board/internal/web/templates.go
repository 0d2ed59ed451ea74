package web

import (
	"context"
	"io"
	"strconv"

	"shenanigigs/services/board/internal/board"
	"shenanigigs/services/board/internal/models"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Page wraps body in the document shell. A loading board refreshes itself.
func Page(title string, refresh bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		if refresh {
			h.raw(`<meta http-equiv="refresh" content="1">`)
		}
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title></head><body><main>`)
		h.component(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

func BoardPage(snap board.Snapshot) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Job Postings</h1>`)
		h.component(ctx, DepartmentSelect(snap.DepartmentOptions, snap.SelectedDepartment))
		h.component(ctx, StatusBanner(snap.Loading, snap.Error))
		h.component(ctx, PostingsTable(snap.Columns, snap.Rows))
		return h.err
	})
	return Page("Job Postings", snap.Loading, body)
}

func DepartmentSelect(options []models.DepartmentOption, selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<form method="post" action="/department"><label for="department">Department</label>`)
		h.raw(`<select id="department" name="department" onchange="this.form.submit()">`)
		for _, opt := range options {
			h.raw(`<option value="`)
			h.text(opt.Value)
			h.raw(`"`)
			if opt.Value == selected {
				h.raw(` selected`)
			}
			h.raw(`>`)
			h.text(opt.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select><noscript><button type="submit">Apply</button></noscript></form>`)
		return h.err
	})
}

func StatusBanner(loading bool, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if loading {
			h.raw(`<div class="spinner" role="status">Loading...</div>`)
		}
		if errMsg != "" {
			h.raw(`<div class="error" role="alert">`)
			h.text(errMsg)
			h.raw(`</div>`)
		}
		return h.err
	})
}

func PostingsTable(columns []models.Column, rows []models.Row) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table><thead><tr>`)
		for _, col := range columns {
			h.raw(`<th data-type="`)
			h.text(string(col.Type))
			h.raw(`">`)
			h.text(col.Label)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			h.raw(`<tr data-id="`)
			h.text(row.ID)
			h.raw(`">`)
			for _, col := range columns {
				h.raw(`<td>`)
				h.text(cellValue(row, col.FieldName))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func cellValue(row models.Row, field string) string {
	switch field {
	case "jobTitle":
		return deref(row.JobTitle)
	case "department":
		return deref(row.Department)
	case "location":
		return deref(row.Location)
	case "openPositions":
		return strconv.FormatFloat(row.OpenPositions, 'f', -1, 64)
	case "postingDate":
		if row.PostingDate == nil {
			return ""
		}
		return row.PostingDate.Format(models.DateLayout)
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
