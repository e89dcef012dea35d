// Package web embeds the dashboard page templates and static assets.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"fieldpulse/internal/dashboard"
)

//go:embed templates/*.html
var Templates embed.FS

//go:embed static/*
var Static embed.FS

// PageTemplate is the name of the dashboard page template.
const PageTemplate = "dashboard.html"

// ParseTemplates parses every embedded page template.
func ParseTemplates() (*template.Template, error) {
	return template.New("fieldpulse").ParseFS(Templates, "templates/*.html")
}

// WritePage renders the dashboard shell for view.
func WritePage(w io.Writer, view dashboard.View) error {
	tmpl, err := ParseTemplates()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, PageTemplate, view)
}

// StaticPage renders a self-contained page with the charts inlined, used for
// file exports and screenshots.
func StaticPage(d *dashboard.Dashboard, scale dashboard.Scale, refreshed string) ([]byte, error) {
	var charts bytes.Buffer
	if err := d.WriteCharts(&charts); err != nil {
		return nil, err
	}
	view := d.View(scale)
	view.ChartsDoc = charts.String()
	view.Refreshed = refreshed
	var page bytes.Buffer
	if err := WritePage(&page, view); err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
