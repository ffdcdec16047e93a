package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

type successPageData struct {
	Title          string
	Status         string
	Message        string
	SubscriptionID string
	RenewsOn       string
}

type cancelPageData struct {
	Title   string
	Message string
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		log.Err(err).Str("template", name).Msg("failed to parse template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", name).Msg("failed to render template")
	}
}
