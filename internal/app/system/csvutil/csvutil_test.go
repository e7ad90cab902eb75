// internal/app/system/csvutil/csvutil_test.go
package csvutil

import (
	"strings"
	"testing"

	"github.com/dalemusser/carehub/internal/domain/models"
)

func TestParseMembersCSV(t *testing.T) {
	in := strings.Join([]string{
		"full_name,zone,plan_type,pics_score,panel_member",
		"Ada Park,SW,HMO,45,true",
		"Ben Okafor,ne,ppo,,",
		"",
		"Carla Méndez,LC,HMO,80,yes",
	}, "\n")

	rows, rowErrs, err := ParseMembersCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseMembersCSV: %v", err)
	}
	if rowErrs != nil {
		t.Fatalf("rowErrs = %v", rowErrs)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if rows[0].FullName != "Ada Park" || rows[0].Zone != models.ZoneSW ||
		rows[0].PlanType != "HMO" || rows[0].PICSScore != 45 || !rows[0].PanelMember {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// Zone and plan folded to canonical case; blank score/panel default.
	if rows[1].Zone != models.ZoneNE || rows[1].PlanType != "PPO" ||
		rows[1].PICSScore != 0 || rows[1].PanelMember {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Zone != models.ZoneLC || !rows[2].PanelMember {
		t.Errorf("row 2 = %+v", rows[2])
	}
}

func TestParseMembersCSV_NoHeader(t *testing.T) {
	rows, rowErrs, err := ParseMembersCSV(strings.NewReader("Ada Park,SW,HMO,45,true\n"))
	if err != nil || rowErrs != nil {
		t.Fatalf("err = %v, rowErrs = %v", err, rowErrs)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (first row is data, not a header)", len(rows))
	}
}

func TestParseMembersCSV_RowErrors(t *testing.T) {
	in := strings.Join([]string{
		"full_name,zone,plan_type,pics_score,panel_member",
		",SW,HMO,10,false",
		"Ben Okafor,XX,HMO,10,false",
		"Carla Méndez,SW,,10,false",
		"Dev Patel,SW,HMO,-3,false",
		"Eve Liu,SW,HMO,10,maybe",
		"Fay Adeyemi,SW,HMO,10,false",
	}, "\n")

	rows, rowErrs, err := ParseMembersCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseMembersCSV: %v", err)
	}
	if rows != nil {
		t.Error("a file with bad rows must return no rows at all")
	}
	if len(rowErrs) != 5 {
		t.Fatalf("got %d row errors, want 5: %v", len(rowErrs), rowErrs)
	}

	wantLines := []int{2, 3, 4, 5, 6}
	for i, re := range rowErrs {
		if re.Line != wantLines[i] {
			t.Errorf("rowErrs[%d].Line = %d, want %d", i, re.Line, wantLines[i])
		}
	}
	if !strings.Contains(rowErrs[0].Reason, "full name") {
		t.Errorf("reason = %q", rowErrs[0].Reason)
	}
	if !strings.Contains(rowErrs[1].Reason, "zone") {
		t.Errorf("reason = %q", rowErrs[1].Reason)
	}
}

func TestParseMembersCSV_Empty(t *testing.T) {
	rows, rowErrs, err := ParseMembersCSV(strings.NewReader(""))
	if err != nil || rowErrs != nil || len(rows) != 0 {
		t.Fatalf("rows=%v rowErrs=%v err=%v, want all empty", rows, rowErrs, err)
	}
}
