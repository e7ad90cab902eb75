// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/carehub/internal/domain/models"
)

// Upload size and row limits for CSV processing.
const (
	// MaxRows caps how many member rows one upload may carry.
	MaxRows = 20000
)

// MemberCSVRow is one normalized, validated member row.
// Column order: full_name, zone, plan_type, pics_score, panel_member.
type MemberCSVRow struct {
	FullName    string
	Zone        models.Zone
	PlanType    string
	PICSScore   int
	PanelMember bool
}

// RowError names a rejected line and why.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseMembersCSV reads all rows from r, skips a header if present, and
// validates each row. It never writes to the database; callers insert
// only when the whole file is clean, so a bad upload rejects atomically.
// Row-level problems come back in rowErrs; err reports problems with the
// file itself.
func ParseMembersCSV(r io.Reader) (rows []MemberCSVRow, rowErrs []RowError, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	line := 0
	first := true
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		line++
		if e != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: "malformed CSV: " + e.Error()})
			continue
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if isBlank(rec) {
			continue
		}
		if len(rows) >= MaxRows {
			return nil, nil, fmt.Errorf("upload exceeds %d rows", MaxRows)
		}

		row, reason := parseRow(rec)
		if reason != "" {
			rowErrs = append(rowErrs, RowError{Line: line, Reason: reason})
			continue
		}
		rows = append(rows, row)
	}
	if len(rowErrs) > 0 {
		return nil, rowErrs, nil
	}
	return rows, nil, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(rec[0]))
	return h == "full_name" || h == "full name" || h == "name"
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(rec []string) (MemberCSVRow, string) {
	get := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	row := MemberCSVRow{
		FullName: get(0),
		PlanType: strings.ToUpper(get(2)),
	}
	if row.FullName == "" {
		return MemberCSVRow{}, "missing full name"
	}

	row.Zone = models.Zone(strings.ToUpper(get(1)))
	if !models.IsValidZone(row.Zone) {
		return MemberCSVRow{}, "invalid or missing zone"
	}

	if row.PlanType == "" {
		return MemberCSVRow{}, "missing plan type"
	}

	if s := get(3); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return MemberCSVRow{}, "pics_score must be a non-negative integer"
		}
		row.PICSScore = n
	}

	switch strings.ToLower(get(4)) {
	case "", "false", "no", "n", "0":
		row.PanelMember = false
	case "true", "yes", "y", "1":
		row.PanelMember = true
	default:
		return MemberCSVRow{}, "panel_member must be true or false"
	}

	return row, ""
}
