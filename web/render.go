package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageSummary      = "summary"
	PageVerifyError  = "verify_error"
	PageThankYou     = "thank_you"
	PageAnnouncement = "announcement"
)

// PageData is the template data of every page. View holds the page-specific
// view model from the component package.
type PageData struct {
	Title   string
	View    any
	Visible bool
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *zap.Logger) *Renderer {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return newRenderer(sub, logger)
}

func newRenderer(tfs fs.FS, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	layout := template.Must(template.New("layout").ParseFS(tfs, "layout.html"))

	pages := []string{PageSummary, PageVerifyError, PageThankYou, PageAnnouncement}
	templates := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t := template.Must(layout.Clone())
		template.Must(t.ParseFS(tfs, name+".html"))
		templates[name] = t
	}
	return &Renderer{templates: templates, logger: logger}
}

// WantsJSON reports whether the client asked for JSON instead of HTML.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Render writes the named page, or its view model as JSON when the client
// asks for it.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	if WantsJSON(r) {
		RenderJSON(w, status, data.View)
		return
	}
	t, ok := rd.templates[name]
	if !ok {
		rd.logger.Error("template not found", zap.String("page", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("template execution error", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func RenderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
