package communication

import (
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/i18n"
)

// TemplateExtension is the extension of mail templates.
const TemplateExtension = ".html"

// MailTemplate names a template relative to the templates directory,
// without extension.
type MailTemplate string

// TemplateRenderer renders the HTML body of a message.
type TemplateRenderer interface {
	Render(req *MailRequest, template MailTemplate, model map[string]any) (string, error)
}

// DjangoRenderer renders pongo2 templates through the fiber django engine.
type DjangoRenderer struct {
	engine  *django.Engine
	catalog *i18n.Catalog
	now     func() time.Time
}

// NewDjangoRenderer loads every template in dir.
func NewDjangoRenderer(dir string, catalog *i18n.Catalog) (*DjangoRenderer, error) {
	return newDjangoRenderer(django.New(dir, TemplateExtension), catalog)
}

// NewDjangoRendererFS loads the templates from fs, for example an embedded
// directory wrapped with http.FS.
func NewDjangoRendererFS(fs http.FileSystem, catalog *i18n.Catalog) (*DjangoRenderer, error) {
	return newDjangoRenderer(django.NewFileSystem(fs, TemplateExtension), catalog)
}

func newDjangoRenderer(engine *django.Engine, catalog *i18n.Catalog) (*DjangoRenderer, error) {
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to load mail templates")
	}
	return &DjangoRenderer{engine: engine, catalog: catalog, now: time.Now}, nil
}

// WithClock replaces time.Now.
func (r *DjangoRenderer) WithClock(now func() time.Time) *DjangoRenderer {
	if now != nil {
		r.now = now
	}
	return r
}

// Render renders template with model. Besides the model, templates see
// i18n, currentYear, serverUtcTime and, when set on the request,
// baseServletPath and appName.
func (r *DjangoRenderer) Render(req *MailRequest, template MailTemplate, model map[string]any) (string, error) {
	binding := r.binding(req, model)

	var out strings.Builder
	if err := r.engine.Render(&out, string(template), binding); err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "unable to render mail template").
			WithMetadata(map[string]any{"template": string(template)})
	}
	return out.String(), nil
}

func (r *DjangoRenderer) binding(req *MailRequest, model map[string]any) map[string]any {
	binding := maps.Clone(model)
	if binding == nil {
		binding = map[string]any{}
	}

	now := r.now().UTC()
	locale := ""
	if req != nil {
		locale = req.Locale
	}

	binding["i18n"] = r.translate(locale)
	binding["currentYear"] = strconv.Itoa(now.Year())
	binding["serverUtcTime"] = now.Format(time.RFC3339)

	if req != nil && req.BaseServletPath != "" {
		binding["baseServletPath"] = req.BaseServletPath
	}
	if req != nil && req.AppName != "" {
		binding["appName"] = req.AppName
	}
	return binding
}

// translate returns the template function i18n(key[, vars]).
func (r *DjangoRenderer) translate(locale string) func(args ...any) string {
	return func(args ...any) string {
		if len(args) == 0 {
			return ""
		}
		key := fmt.Sprint(args[0])
		if r.catalog == nil {
			return key
		}

		var vars map[string]any
		if len(args) > 1 {
			vars, _ = args[1].(map[string]any)
		}
		if locale == "" {
			locale = r.catalog.DefaultLocale()
		}
		return r.catalog.Message(locale, key, vars)
	}
}
