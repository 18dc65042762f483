package server

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
)

// ViewData is the context a template is rendered with.
type ViewData map[string]interface{}

// Renderer turns a template name and its data into a page.
type Renderer interface {
	Render(w io.Writer, name string, data ViewData) error
}

//go:embed templates
var templateFS embed.FS

// TemplateRenderer renders the embedded html/template pages. Every page is
// parsed together with base.html and the includes.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses every page under templates/. mediaURL turns a
// stored image key into its public URL.
func NewTemplateRenderer(mediaURL func(key string) string) (*TemplateRenderer, error) {
	funcs := template.FuncMap{
		"media": mediaURL,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"profileURL": profileURL,
		"postURL":    postURL,
	}

	pages := map[string]*template.Template{}
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, "templates/")
		if d.IsDir() || name == "base.html" || strings.HasPrefix(name, "includes/") {
			return nil
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/includes/*.html", path)
		if err != nil {
			return errors.Wrapf(err, "failed to parse template %s", name)
		}
		pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{pages: pages}, nil
}

func (tr *TemplateRenderer) Render(w io.Writer, name string, data ViewData) error {
	t, ok := tr.pages[name]
	if !ok {
		return errors.Errorf("unknown template %s", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// render writes the page with status. The page is buffered so a template
// failure still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, rc *RequestContext, status int, name string, data ViewData) {
	if data == nil {
		data = ViewData{}
	}
	data["user"] = rc.User
	data["path"] = r.URL.Path

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		logging.Logger.WithError(err).WithField("template", name).Error("Failed to render template")
		if name == "misc/500.html" {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.serverError(w, r, rc, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	s.render(w, r, rc, http.StatusNotFound, "misc/404.html", nil)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, rc *RequestContext, err error) {
	logging.Logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Request failed")
	s.render(w, r, rc, http.StatusInternalServerError, "misc/500.html", nil)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	logging.Logger.WithError(err).WithField("path", r.URL.Path).Warn("Bad request")
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}
