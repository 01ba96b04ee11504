// Package i18n resolves request locales and renders localized messages
// with {{name}} placeholders.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when nothing else is configured.
const DefaultLocale = "en_US"

//go:embed locales/*.yaml
var embedded embed.FS

// Catalog holds message bundles indexed by locale.
type Catalog struct {
	mu            sync.RWMutex
	defaultLocale string
	bundles       map[string]map[string]string
}

// NewCatalog returns a catalog preloaded with the embedded English and
// Polish bundles.
func NewCatalog(defaultLocale string) (*Catalog, error) {
	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = DefaultLocale
	}

	c := &Catalog{
		defaultLocale: NormalizeLocale(defaultLocale),
		bundles:       map[string]map[string]string{},
	}

	if err := c.LoadFS(embedded, "locales"); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFS merges every *.yaml or *.yml file in dir. The file name without
// extension is the locale, for example pl_PL.yaml.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to read message bundles").
			WithMetadata(map[string]any{"dir": dir})
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "unable to read message bundle").
				WithMetadata(map[string]any{"file": entry.Name()})
		}

		if err := c.Add(strings.TrimSuffix(entry.Name(), ext), raw); err != nil {
			return err
		}
	}
	return nil
}

// Add merges a YAML bundle for locale. Later values override earlier ones.
func (c *Catalog) Add(locale string, raw []byte) error {
	messages := map[string]string{}
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid message bundle").
			WithMetadata(map[string]any{"locale": locale})
	}

	locale = NormalizeLocale(locale)

	c.mu.Lock()
	defer c.mu.Unlock()

	bundle, ok := c.bundles[locale]
	if !ok {
		bundle = make(map[string]string, len(messages))
		c.bundles[locale] = bundle
	}
	for k, v := range messages {
		bundle[k] = v
	}
	return nil
}

// Locales returns the locales that have at least one bundle.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.bundles))
	for l := range c.bundles {
		out = append(out, l)
	}
	return out
}

// DefaultLocale returns the fallback locale.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Message returns the message for key in locale, falling back to the default
// locale and then to the key itself. Placeholders are replaced with vars.
func (c *Catalog) Message(locale, key string, vars map[string]any) string {
	c.mu.RLock()
	text, ok := c.lookup(NormalizeLocale(locale), key)
	if !ok {
		text, ok = c.lookup(c.defaultLocale, key)
	}
	c.mu.RUnlock()

	if !ok {
		return key
	}
	return ExtractVariables(text, vars)
}

// Has reports whether key is defined for locale or the default locale.
func (c *Catalog) Has(locale, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.lookup(NormalizeLocale(locale), key); ok {
		return true
	}
	_, ok := c.lookup(c.defaultLocale, key)
	return ok
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	bundle, ok := c.bundles[locale]
	if !ok {
		return "", false
	}
	text, ok := bundle[key]
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// ExtractVariables replaces every {{name}} in message with vars[name].
func ExtractVariables(message string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(message, "{{") {
		return message
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(message)
}

// NormalizeLocale turns "pl-pl", "pl_PL" or "PL_pl" into "pl_PL". Bare
// languages stay lower case.
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "-", "_"))
	lang, region, found := strings.Cut(locale, "_")
	if !found {
		return strings.ToLower(lang)
	}
	return strings.ToLower(lang) + "_" + strings.ToUpper(region)
}
