package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"coachingsite/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Parsed templates are cached by file name.
type templateRenderer struct {
	mu    sync.Mutex
	funcs template.FuncMap
	html  map[string]*template.Template
	text  map[string]*texttemplate.Template
}

// NewTemplateRenderer returns an EmailTemplateRenderer that loads templates from the embedded templates folder.
// Timestamps are shown as wall-clock time in loc; nil means UTC.
func NewTemplateRenderer(loc *time.Location) domain.EmailTemplateRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &templateRenderer{
		funcs: templateFuncs(loc),
		html:  make(map[string]*template.Template),
		text:  make(map[string]*texttemplate.Template),
	}
}

// Render executes the named template (e.g. "contact_admin") with data and returns subject, html, and text bodies.
// The HTML body escapes every interpolated value; the subject is reduced to a single header-safe line.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = r.renderText(templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.renderHTML(templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.renderText(templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return HeaderValue(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) renderHTML(name string, data any) (string, error) {
	r.mu.Lock()
	t, ok := r.html[name]
	if !ok {
		var err error
		t, err = template.New(name).Funcs(r.funcs).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.html[name] = t
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) renderText(name string, data any) (string, error) {
	r.mu.Lock()
	t, ok := r.text[name]
	if !ok {
		var err error
		t, err = texttemplate.New(name).Funcs(texttemplate.FuncMap(r.funcs)).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.text[name] = t
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"contactType": func(s string) string {
			switch s {
			case domain.ContactTypeZoom:
				return "Zoom-Videocall"
			case domain.ContactTypePhone:
				return "Telefon"
			default:
				return s
			}
		},
		"germanDate": func(s string) string {
			parts := strings.Split(s, "-")
			if len(parts) != 3 {
				return s
			}
			return parts[2] + "." + parts[1] + "." + parts[0]
		},
		"dateTime": func(t time.Time) string {
			return t.In(loc).Format("02.01.2006 15:04")
		},
	}
}
