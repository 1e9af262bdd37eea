package app

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sync"

	rice "github.com/GeertJohan/go.rice"
	log "github.com/sirupsen/logrus"
)

// templateStore holds the parsed page templates, each combined with the
// shared base layout. Load may be called again at runtime (the template
// watcher does this) so access is guarded.
type templateStore struct {
	sync.RWMutex

	base      string
	pages     []string
	templates map[string]*template.Template
}

func newTemplateStore(base string, pages ...string) *templateStore {
	return &templateStore{
		base:      base,
		pages:     pages,
		templates: make(map[string]*template.Template),
	}
}

// Load parses every page template from the box together with the base
// layout, replacing whatever was loaded before.
func (t *templateStore) Load(box *rice.Box) error {
	parsed := make(map[string]*template.Template)
	for _, name := range t.pages {
		page, err := box.String(name + ".html")
		if err != nil {
			return fmt.Errorf("error reading template %s: %w", name, err)
		}
		base, err := box.String(t.base + ".html")
		if err != nil {
			return fmt.Errorf("error reading base template: %w", err)
		}
		tmpl, err := template.New(name).Parse(page)
		if err != nil {
			return fmt.Errorf("error parsing template %s: %w", name, err)
		}
		if _, err := tmpl.Parse(base); err != nil {
			return fmt.Errorf("error parsing base template: %w", err)
		}
		parsed[name] = tmpl
	}

	t.Lock()
	t.templates = parsed
	t.Unlock()
	return nil
}

func (t *templateStore) Exec(name string, ctx interface{}) (io.WriterTo, error) {
	t.RLock()
	tmpl, ok := t.templates[name]
	t.RUnlock()
	if !ok {
		err := fmt.Errorf("no such template: %s", name)
		log.Error(err)
		return nil, err
	}

	buf := bytes.NewBuffer([]byte{})
	err := tmpl.ExecuteTemplate(buf, t.base, ctx)
	if err != nil {
		err := fmt.Errorf("error executing template %s: %w", name, err)
		log.Error(err)
		return nil, err
	}

	return buf, nil
}
