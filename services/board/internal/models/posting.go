package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Position is the nested reference a Posting points at. Every field is
// optional on the wire.
type Position struct {
	Title         *string
	Department    *string
	Location      *string
	OpenPositions *float64
	OpenDate      *time.Time
}

// Posting is a raw backend record joining a job posting to its position.
type Posting struct {
	ID       string
	Position *Position
}

type positionWire struct {
	Title         json.RawMessage `json:"title"`
	Department    json.RawMessage `json:"department"`
	Location      json.RawMessage `json:"location"`
	OpenPositions json.RawMessage `json:"open_positions"`
	OpenDate      json.RawMessage `json:"open_date"`
}

type postingWire struct {
	ID       json.RawMessage `json:"id"`
	Position json.RawMessage `json:"position"`
}

// UnmarshalJSON requires an object but decodes its fields leniently: a
// malformed id becomes empty and a malformed position becomes nil.
func (p *Posting) UnmarshalJSON(data []byte) error {
	var wire postingWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Posting{
		ID:       decodeID(wire.ID),
		Position: decodePosition(wire.Position),
	}
	return nil
}

func (p Posting) MarshalJSON() ([]byte, error) {
	out := struct {
		ID       string          `json:"id"`
		Position json.RawMessage `json:"position"`
	}{ID: p.ID, Position: json.RawMessage("null")}

	if p.Position != nil {
		pos, err := json.Marshal(p.Position)
		if err != nil {
			return nil, err
		}
		out.Position = pos
	}
	return json.Marshal(out)
}

func (p Position) MarshalJSON() ([]byte, error) {
	out := struct {
		Title         *string  `json:"title"`
		Department    *string  `json:"department"`
		Location      *string  `json:"location"`
		OpenPositions *float64 `json:"open_positions"`
		OpenDate      *string  `json:"open_date"`
	}{
		Title:         p.Title,
		Department:    p.Department,
		Location:      p.Location,
		OpenPositions: p.OpenPositions,
	}
	if p.OpenDate != nil {
		s := p.OpenDate.Format(DateLayout)
		out.OpenDate = &s
	}
	return json.Marshal(out)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeID(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func decodePosition(raw json.RawMessage) *Position {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) || trimmed[0] != '{' {
		return nil
	}

	var wire positionWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil
	}

	return &Position{
		Title:         decodeString(wire.Title),
		Department:    decodeString(wire.Department),
		Location:      decodeString(wire.Location),
		OpenPositions: decodeNumber(wire.OpenPositions),
		OpenDate:      decodeDate(wire.OpenDate),
	}
}

func decodeString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func decodeNumber(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func decodeDate(raw json.RawMessage) *time.Time {
	s := decodeString(raw)
	if s == nil {
		return nil
	}
	return ParseDate(*s)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// date at UTC midnight. Anything else yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return &d
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}
