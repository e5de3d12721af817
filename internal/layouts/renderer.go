package layouts

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitegen/pkg/interfaces"
)

// NewTemplateRenderer returns a renderer backed by html/template that parses
// every .html and .tmpl file under baseDir. Templates are addressed by file
// base name, extension included.
func NewTemplateRenderer(baseDir string) (interfaces.TemplateRenderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("layouts: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("layouts: template path %q is not a directory", baseDir)
	}
	return &templateRenderer{
		baseDir: baseDir,
		filters: template.FuncMap{},
		globals: map[string]any{},
	}, nil
}

type templateRenderer struct {
	baseDir string

	mu      sync.Mutex
	filters template.FuncMap
	globals map[string]any

	once sync.Once
	tpl  *template.Template
	err  error
}

func (r *templateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		var files []string
		err := filepath.WalkDir(r.baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if _, ok := templateExtensions[ext]; !ok {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			r.err = err
			return
		}
		if len(files) == 0 {
			r.err = fmt.Errorf("layouts: no templates found in %s", r.baseDir)
			return
		}

		funcs := baseFuncMap()
		r.mu.Lock()
		for name, fn := range r.filters {
			funcs[name] = fn
		}
		r.mu.Unlock()

		r.tpl, r.err = template.New("layouts").Funcs(funcs).ParseFiles(files...)
	})
	return r.tpl, r.err
}

func (r *templateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *templateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("layouts: template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, r.withGlobals(data)); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *templateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(baseFuncMap()).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, r.withGlobals(data)); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// RegisterFilter exposes fn to templates under name. Filters must be
// registered before the first render; the template set parses once.
func (r *templateRenderer) RegisterFilter(name string, fn func(any, any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("layouts: filter name and func required")
	}
	if r.tpl != nil || r.err != nil {
		return fmt.Errorf("layouts: templates already parsed, register filters earlier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = func(input any, param ...any) (any, error) {
		var arg any
		if len(param) > 0 {
			arg = param[0]
		}
		return fn(input, arg)
	}
	return nil
}

// GlobalContext merges data into every render call. Map payloads gain the
// globals under missing keys; non-map payloads pass through untouched.
func (r *templateRenderer) GlobalContext(data any) error {
	values, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("layouts: global context expects map[string]any")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range values {
		r.globals[key] = value
	}
	return nil
}

func (r *templateRenderer) withGlobals(data any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.globals) == 0 {
		return data
	}

	values, ok := data.(map[string]any)
	if !ok {
		return data
	}
	merged := make(map[string]any, len(r.globals)+len(values))
	for key, value := range r.globals {
		merged[key] = value
	}
	for key, value := range values {
		merged[key] = value
	}
	return merged
}

func baseFuncMap() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value any) template.HTML { return toHTML(value) },
		"formatDate": func(value any, layout ...string) string {
			format := "January 2, 2006"
			if len(layout) > 0 && strings.TrimSpace(layout[0]) != "" {
				format = layout[0]
			}
			switch v := value.(type) {
			case time.Time:
				if v.IsZero() {
					return ""
				}
				return v.Format(format)
			case *time.Time:
				if v == nil || v.IsZero() {
					return ""
				}
				return v.Format(format)
			case string:
				return v
			default:
				return ""
			}
		},
	}
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
