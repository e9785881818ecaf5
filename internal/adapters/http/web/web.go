// Package web embeds the HTML templates of the viewer and admin pages.
package web

import (
	"embed"
	"html/template"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	ViewerPage = "viewer.tmpl"
	LoginPage  = "login.tmpl"
	AdminPage  = "admin.tmpl"
)

// Templates parses every embedded template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"refPrefix": func() string { return domain.ReferencePrefix },
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// MustTemplates is Templates for static initialization. It panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
