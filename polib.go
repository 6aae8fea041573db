// Package polib resolves translated strings from gettext PO catalogs.
//
// A Registry owns the loaded catalogs, grouped per locale into
// CatalogSets. Lookups are lock-free reads of an atomically swapped
// index, so translation calls stay cheap while background reloads
// replace whole catalogs at once. There is no package-level registry:
// callers construct and own their instance.
package polib

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bigabdoul/polib/po"
	"github.com/bigabdoul/polib/pluralforms"
)

// Loader is a pluggable catalog source consulted before the directory
// scan fallback.
type Loader interface {
	Load(locale string) ([]*po.Catalog, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(locale string) ([]*po.Catalog, error)

func (f LoaderFunc) Load(locale string) ([]*po.Catalog, error) { return f(locale) }

// CatalogSet groups the catalogs loaded for one locale, in load order.
type CatalogSet struct {
	Locale   string
	Catalogs []*po.Catalog
}

// Lookup resolves key across the set's catalogs in order.
func (s *CatalogSet) Lookup(key string) (*po.Translation, bool) {
	for _, c := range s.Catalogs {
		if t, ok := c.Get(key); ok {
			return t, true
		}
	}
	return nil, false
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Directory is the root scanned for "*<locale>.po" files when no
	// Loader serves a locale.
	Directory string

	// Loader, when set, is asked for catalogs first.
	Loader Loader

	// Recursive and LanguageFallback are passed through to the
	// directory scan.
	Recursive        bool
	LanguageFallback bool

	// SkipComments drops comment metadata while parsing; lookups don't
	// need it.
	SkipComments bool

	// PollInterval enables modification-time polling alongside the
	// change notifications when a watcher runs. Zero disables polling.
	PollInterval time.Duration

	Logger *logrus.Logger
}

// Registry is a caller-owned index of loaded catalogs. All lookup
// methods are safe for concurrent use with Load/Reload/Reset and with
// a running watcher.
type Registry struct {
	opts RegistryOptions
	log  *logrus.Logger

	mu   sync.Mutex // serializes index writers
	sets atomic.Pointer[map[string]*CatalogSet]
}

// NewRegistry returns an empty registry. Locales must be loaded
// explicitly before lookups resolve anything.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	r := &Registry{opts: opts, log: opts.Logger}
	empty := map[string]*CatalogSet{}
	r.sets.Store(&empty)
	return r
}

// Set returns the loaded catalog set for locale.
func (r *Registry) Set(locale string) (*CatalogSet, bool) {
	s, ok := (*r.sets.Load())[locale]
	return s, ok
}

// Load populates the registry for locale: from the configured Loader
// when present, otherwise by scanning Directory. During a scan,
// catalogs that fail to parse are logged and skipped; the remaining
// files still load.
func (r *Registry) Load(locale string) error {
	catalogs, err := r.loadCatalogs(locale)
	if err != nil {
		return err
	}
	r.swapSet(&CatalogSet{Locale: locale, Catalogs: catalogs})
	r.log.WithFields(logrus.Fields{
		"locale":   locale,
		"catalogs": len(catalogs),
	}).Debug("locale loaded")
	return nil
}

// Reload re-reads the locale from its source and swaps the whole set.
func (r *Registry) Reload(locale string) error { return r.Load(locale) }

// Reset drops every loaded catalog.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	empty := map[string]*CatalogSet{}
	r.sets.Store(&empty)
}

func (r *Registry) loadCatalogs(locale string) ([]*po.Catalog, error) {
	if r.opts.Loader != nil {
		catalogs, err := r.opts.Loader.Load(locale)
		if err != nil {
			return nil, fmt.Errorf("loader for %s: %w", locale, err)
		}
		if catalogs != nil {
			return catalogs, nil
		}
		// A nil slice means the loader doesn't serve this locale.
	}

	opts := r.readOptions(locale)
	files, err := po.FindCatalogFiles(r.opts.Directory, locale, opts)
	if err != nil {
		return nil, err
	}
	catalogs := make([]*po.Catalog, 0, len(files))
	for _, f := range files {
		cat, err := po.ReadFile(f, opts)
		if err != nil {
			r.log.WithError(err).WithField("file", f).
				Warn("skipping unparsable catalog")
			continue
		}
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

func (r *Registry) readOptions(locale string) po.ReadOptions {
	return po.ReadOptions{
		Culture:          locale,
		SkipComments:     r.opts.SkipComments,
		Recursive:        r.opts.Recursive,
		LanguageFallback: r.opts.LanguageFallback,
	}
}

// swapSet publishes a replacement set for its locale. Readers always
// observe either the full old set or the full new one.
func (r *Registry) swapSet(s *CatalogSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.sets.Load()
	next := make(map[string]*CatalogSet, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[s.Locale] = s
	r.sets.Store(&next)
}

// Translate resolves the translation for singular in locale, falling
// back to singular itself when the locale isn't loaded or the message
// is untranslated.
func (r *Registry) Translate(locale, singular string) string {
	return r.TranslateContext(locale, "", singular)
}

// TranslateContext resolves a context-disambiguated message.
func (r *Registry) TranslateContext(locale, context, singular string) string {
	if s, ok := r.Set(locale); ok {
		if t, found := s.Lookup(po.Key(context, singular)); found {
			if v := t.Get(); v != "" {
				return v
			}
		}
	}
	return singular
}

// TranslatePlural resolves the plural form for quantity n, interpolating
// n into the resolved string's "{0}" placeholder. Unresolved lookups
// fall back to the passed-in strings under the default two-form rule.
func (r *Registry) TranslatePlural(locale, singular, plural string, n int) string {
	if s, ok := r.Set(locale); ok {
		if t, found := s.Lookup(po.Key("", singular)); found {
			form, err := t.GetPlural(n)
			if err != nil {
				r.log.WithError(err).WithFields(logrus.Fields{
					"locale": locale,
					"msgid":  singular,
				}).Warn("plural resolution failed")
			} else if form != "" {
				return formatCount(form, n)
			}
		}
	}
	if idx := pluralforms.DefaultRule.Index(uint32(max(n, 0))); idx == 0 {
		return formatCount(singular, n)
	}
	return formatCount(plural, n)
}

// formatCount substitutes the quantity for the "{0}" placeholder.
func formatCount(s string, n int) string {
	return strings.ReplaceAll(s, "{0}", strconv.Itoa(n))
}
