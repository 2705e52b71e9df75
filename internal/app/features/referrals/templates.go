// internal/app/features/referrals/templates.go
package referrals

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "referrals",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
