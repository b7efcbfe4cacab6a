package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/middleware"
	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/server/flash"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index.html", "tweets.html", "register.html", "login.html"}

// Form carries submitted values and per-field errors back to a template.
type Form struct {
	Values map[string]string
	Errors map[string][]string
}

func newForm() Form {
	return Form{Values: map[string]string{}, Errors: map[string][]string{}}
}

// AddError records a message against field.
func (f Form) AddError(field, msg string) {
	f.Errors[field] = append(f.Errors[field], msg)
}

// Valid reports whether no errors were recorded.
func (f Form) Valid() bool {
	return len(f.Errors) == 0
}

// Require records "This field is required." for every empty field.
func (f Form) Require(fields ...string) {
	for _, name := range fields {
		if f.Values[name] == "" {
			f.AddError(name, "This field is required.")
		}
	}
}

// Page is the data handed to every template.
type Page struct {
	Title    string
	LoggedIn bool
	UserID   int64
	User     *models.PublicUser
	Flashes  []flash.Message
	Form     Form
	Tweets   []models.Tweet
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// NewRenderer parses all embedded templates.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, log: log}, nil
}

// Render writes the named page with status. Pending flash messages and the
// session state are filled in from the request.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p *Page) {
	t, ok := rn.pages[name]
	if !ok {
		rn.log.Error("unknown template", zap.String("name", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		p = &Page{}
	}
	if p.Form.Values == nil {
		p.Form = newForm()
	}
	p.UserID, p.LoggedIn = middleware.UserIDFromContext(r.Context())
	p.Flashes = flash.Pop(w, r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		rn.log.Error("render template", zap.String("name", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
