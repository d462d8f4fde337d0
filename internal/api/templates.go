package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"leadtracker/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index.html", "leads.html", "edit_lead.html"}

type templateSet struct {
	pages map[string]*template.Template
}

type pageData struct {
	Title     string
	Flashes   []flashMessage
	Interests []string
	Leads     []models.Lead
	LeadID    int64
	Form      models.LeadInput
}

func loadTemplates() (*templateSet, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		set.pages[page] = tmpl
	}
	return set, nil
}

// render writes a page with the pending flash messages plus any extra ones for this response.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData, extra ...flashMessage) {
	tmpl, ok := s.templates.pages[page]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.Flashes = append(s.flashes.pop(w, r), extra...)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("failed to render template")
	}
}
