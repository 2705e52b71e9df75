// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// strict strips every tag; used for anything typed by the public
	// (contact messages, join applications).
	strict = bluemonday.StrictPolicy()

	// ugc allows basic formatting; used for officer-entered content such
	// as approval comments shown back in history views.
	ugc = bluemonday.UGCPolicy()
)

// Strict returns s with all HTML removed.
func Strict(s string) string {
	return strict.Sanitize(s)
}

// UGC returns s with only basic user-generated-content markup kept.
func UGC(s string) string {
	return ugc.Sanitize(s)
}
