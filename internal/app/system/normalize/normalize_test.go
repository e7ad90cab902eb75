package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(string) string
		input string
		want  string
	}{
		{"email lowercased", Email, "USER@Example.COM", "user@example.com"},
		{"email trimmed", Email, "  maria@carehub.test  ", "maria@carehub.test"},
		{"email blank", Email, "   ", ""},
		{"name keeps case", Name, "María García", "María García"},
		{"name trimmed", Name, "  María García  ", "María García"},
		{"status lowercased", Status, "  Disabled ", "disabled"},
		{"role lowercased", Role, "SUPERVISOR", "supervisor"},
		{"role trimmed", Role, " Director ", "director"},
		{"zone uppercased", Zone, "sw", "SW"},
		{"zone trimmed", Zone, "  ne ", "NE"},
		{"plan type lowercased", PlanType, " HMO-SNP ", "hmo-snp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
