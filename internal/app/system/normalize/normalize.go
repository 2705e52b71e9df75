// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses interior whitespace and trims a person's name.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a stored role string. Validation lives in
// system/authz; this only canonicalizes the spelling.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a stored status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Region canonicalizes a district name: trimmed, title-cased words.
// "nairobi" and "Nairobi " refer to the same district.
func Region(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
