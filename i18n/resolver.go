package i18n

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/language"
)

const defaultCacheSize = 256

// Resolver matches Accept-Language headers against the supported locales.
type Resolver struct {
	supported     []string
	defaultLocale string
	matcher       language.Matcher
	cache         *lru.Cache[string, string]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	cacheSize int
}

// WithCacheSize sets the number of headers kept in the resolution cache.
func WithCacheSize(size int) ResolverOption {
	return func(o *resolverOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// NewResolver builds a resolver. defaultLocale is added to supported when
// missing and is used for empty or unmatched headers.
func NewResolver(defaultLocale string, supported []string, opts ...ResolverOption) (*Resolver, error) {
	o := &resolverOptions{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(o)
	}

	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = DefaultLocale
	}
	defaultLocale = NormalizeLocale(defaultLocale)

	locales := []string{defaultLocale}
	for _, l := range supported {
		l = NormalizeLocale(l)
		if l == "" || l == defaultLocale {
			continue
		}
		locales = append(locales, l)
	}

	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(strings.ReplaceAll(l, "_", "-"))
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	cache, err := lru.New[string, string](o.cacheSize)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		supported:     locales,
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(tags),
		cache:         cache,
	}, nil
}

// Supported returns the locales known to the resolver, default first.
func (r *Resolver) Supported() []string {
	out := make([]string, len(r.supported))
	copy(out, r.supported)
	return out
}

// Default returns the default locale.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Resolve returns the best supported locale for an Accept-Language value.
func (r *Resolver) Resolve(acceptLanguage string) string {
	header := strings.TrimSpace(acceptLanguage)
	if header == "" {
		return r.defaultLocale
	}

	if locale, ok := r.cache.Get(header); ok {
		return locale
	}

	locale := r.defaultLocale
	if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
		if _, idx, conf := r.matcher.Match(tags...); conf != language.No {
			locale = r.supported[idx]
		}
	}

	r.cache.Add(header, locale)
	return locale
}

// ResolveRequest resolves the locale of a fiber request.
func (r *Resolver) ResolveRequest(c *fiber.Ctx) string {
	return r.Resolve(c.Get(fiber.HeaderAcceptLanguage))
}
