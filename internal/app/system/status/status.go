// internal/app/system/status/status.go
package status

// Record statuses shared by tenants and coordinators.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a known status value.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
