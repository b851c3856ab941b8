package chain

import (
	"strings"
	"text/template"
)

// Template is a Formatter backed by text/template. Missing variables are an
// error rather than an empty substitution, so a typo in a prompt template
// fails the call instead of silently degrading the prompt.
type Template struct {
	tmpl *template.Template
}

func NewTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	return &Template{tmpl: tmpl}, nil
}

// MustTemplate is NewTemplate for static templates; it panics on parse errors.
func MustTemplate(name, text string) *Template {
	t, err := NewTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Format(values map[string]any) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, values); err != nil {
		return "", err
	}
	return b.String(), nil
}
