// Package templates renders transactional emails from embedded
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl files.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	Username string `json:"Username"`
	Type     string `json:"Type"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`
	PrivacyURL     string `json:"PrivacyURL"`
	UnsubscribeURL string `json:"UnsubscribeURL"`
	ProfileURL     string `json:"ProfileURL"`

	Time    string            `json:"Time"`
	TimeAt  time.Time         `json:"TimeAt"`
	Changes map[string]string `json:"Changes"`
}

// ToMap flattens d into the map carried by EmailJob.Data. Jobs cross the queue
// as JSON, so templates must render from the map form.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

type emailTemplate struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	loaded   map[string]*emailTemplate
	loadErr  error
)

// load parses every complete template set in FS once.
func load() (map[string]*emailTemplate, error) {
	loadOnce.Do(func() {
		subjects, err := fs.Glob(FS, "*.subject.tmpl")
		if err != nil {
			loadErr = err
			return
		}
		loaded = make(map[string]*emailTemplate, len(subjects))
		for _, s := range subjects {
			name := strings.TrimSuffix(s, ".subject.tmpl")
			t := &emailTemplate{}
			if t.subject, err = texttpl.New(s).Funcs(funcs()).ParseFS(FS, s); err != nil {
				loadErr = fmt.Errorf("parse %q: %w", s, err)
				return
			}
			if t.text, err = texttpl.New(name + ".text.tmpl").Funcs(funcs()).ParseFS(FS, name+".text.tmpl"); err != nil {
				loadErr = fmt.Errorf("parse %q text: %w", name, err)
				return
			}
			if t.html, err = htmpl.New(name + ".html.tmpl").Funcs(funcs()).ParseFS(FS, name+".html.tmpl"); err != nil {
				loadErr = fmt.Errorf("parse %q html: %w", name, err)
				return
			}
			loaded[name] = t
		}
	})
	return loaded, loadErr
}

// Known reports whether name has a full embedded template set.
func Known(name string) bool {
	set, err := load()
	if err != nil {
		return false
	}
	_, ok := set[name]
	return ok
}

func execute(name, part string, exec func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		return "", fmt.Errorf("exec %s %s: %w", name, part, err)
	}
	return buf.String(), nil
}

// Render returns the trimmed subject and the text and html bodies for name.
func Render(name string, data any) (subject, text, html string, err error) {
	set, err := load()
	if err != nil {
		return "", "", "", err
	}
	t, ok := set[name]
	if !ok {
		return "", "", "", fmt.Errorf("template %q not found", name)
	}
	if subject, err = execute(name, "subject", func(b *bytes.Buffer) error { return t.subject.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	if text, err = execute(name, "text", func(b *bytes.Buffer) error { return t.text.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	if html, err = execute(name, "html", func(b *bytes.Buffer) error { return t.html.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
