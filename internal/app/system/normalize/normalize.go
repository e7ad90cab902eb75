// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person or tenant name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value ("active", "disabled").
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a coordinator role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Zone uppercases and trims a service-zone code ("sw" -> "SW").
func Zone(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// PlanType lowercases and trims a plan-type code.
func PlanType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
