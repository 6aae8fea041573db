// Package po represents gettext PO catalogs in memory and converts
// them to and from the PO text format.
package po

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bigabdoul/polib/pluralforms"
	"github.com/cespare/xxhash"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
)

// Header is one "Name: Value" pair from the catalog's metadata block.
// Names compare case-insensitively; insertion order is preserved for
// faithful serialization.
type Header struct {
	Name  string
	Value string
}

// Catalog is the in-memory representation of one PO file.
type Catalog struct {
	Headers        []Header
	HeaderComments string // free text preceding the header block, verbatim

	// Culture is the locale this catalog represents, resolved from the
	// file name, an explicit read parameter, or the Language header, in
	// that order. Locale is its parsed form when recognized.
	Culture string
	Locale  language.Tag

	FileID         uint64 // stable hash of the source path; 0 without a file origin
	FileName       string
	LastAccessTime time.Time

	// PluralCount is the number of plural forms, 2 unless a
	// Plural-Forms header or the language rule table says otherwise.
	PluralCount int

	entries map[string]*Translation
	order   []*Translation

	mu         sync.Mutex
	expr       pluralforms.Expression
	pluralExpr string // raw expression from the Plural-Forms header
}

// NewCatalog returns an empty catalog with default plural metadata.
func NewCatalog() *Catalog {
	return &Catalog{
		PluralCount: 2,
		entries:     map[string]*Translation{},
	}
}

// FileID computes the stable identifier external callers use to refer
// to a catalog loaded from path.
func FileID(path string) uint64 {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return xxhash.Sum64String(filepath.Clean(path))
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.order) }

// Get returns the entry stored under key.
func (c *Catalog) Get(key string) (*Translation, bool) {
	t, ok := c.entries[key]
	return t, ok
}

// Entries returns all entries in insertion order. The slice is shared;
// callers must not reorder it.
func (c *Catalog) Entries() []*Translation { return c.order }

// Add stores t under its computed key and takes ownership of it.
// Entries with an empty key, or whose key is already present, are
// rejected: the first occurrence of a key always wins.
func (c *Catalog) Add(t *Translation) bool {
	key := t.Key()
	if key == "" {
		return false
	}
	if _, exists := c.entries[key]; exists {
		return false
	}
	t.catalog = c
	c.entries[key] = t
	c.order = append(c.order, t)
	return true
}

// GetHeader looks up a header value by case-insensitive name.
func (c *Catalog) GetHeader(name string) (string, bool) {
	for _, h := range c.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// SetHeader overwrites the header with the given name, or appends it.
func (c *Catalog) SetHeader(name, value string) {
	for i, h := range c.Headers {
		if strings.EqualFold(h.Name, name) {
			c.Headers[i].Value = value
			return
		}
	}
	c.Headers = append(c.Headers, Header{Name: name, Value: value})
}

var charsetRe = regexp.MustCompile(`(?i)charset\s*=\s*"?\s*([^\s"\\;]+)`)

// GetCharset extracts the charset parameter of the Content-Type header.
func (c *Catalog) GetCharset() (string, bool) {
	ct, ok := c.GetHeader("Content-Type")
	if !ok {
		return "", false
	}
	m := charsetRe.FindStringSubmatch(ct)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// GetEncoding resolves the catalog's charset to an encoding. It returns
// false when the charset is undeclared or unknown.
func (c *Catalog) GetEncoding() (encoding.Encoding, bool) {
	name, ok := c.GetCharset()
	if !ok {
		return nil, false
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, false
	}
	return enc, true
}

// MergeWith refreshes c against a reference catalog, typically a
// template regenerated from source. Entries only present in other are
// added (detached copies) and counted. Entries present in both get
// their extracted/translator comments, flags and references overwritten
// from other, while existing translations are never touched: metadata
// follows the template, human translations stay.
func (c *Catalog) MergeWith(other *Catalog) int {
	added := 0
	for _, src := range other.order {
		key := src.Key()
		dst, exists := c.entries[key]
		if !exists {
			if c.Add(src.Clone()) {
				added++
			}
			continue
		}
		dst.ExtractedComments = src.ExtractedComments
		dst.TranslatorComments = src.TranslatorComments
		dst.Flags = append([]string(nil), src.Flags...)
		dst.References = append([]string(nil), src.References...)
	}
	return added
}

// setPluralForms records the parsed Plural-Forms header data. The
// expression is compiled lazily on first lookup.
func (c *Catalog) setPluralForms(expr string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pluralExpr = expr
	c.PluralCount = count
	c.expr = nil
}

// PluralExpression returns the catalog's plural selector, building it
// on first use: the compiled Plural-Forms expression when the header
// declared one, otherwise the language rule table bound to Culture
// (whose plural count is recorded back onto PluralCount).
func (c *Catalog) PluralExpression() pluralforms.Expression {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expr != nil {
		return c.expr
	}
	if c.pluralExpr != "" {
		if p, err := pluralforms.Compile(c.pluralExpr); err == nil {
			c.expr = p
			return c.expr
		}
		// Malformed expression from a hand-edited header: fall through
		// to the language table rather than failing every lookup.
	}
	rule := pluralforms.ByLanguage(c.Culture)
	c.PluralCount = rule.NPlurals
	c.expr = rule.Native()
	return c.expr
}

func (c *Catalog) pluralIndex(n uint32) (int, error) {
	return c.PluralExpression().Eval(n)
}

func pluralIndexDefault(n uint32) (int, error) {
	return pluralforms.DefaultRule.Index(n), nil
}

// setCulture records the catalog locale, parsing it leniently: an
// unrecognized tag keeps the raw string with an undefined Locale.
func (c *Catalog) setCulture(culture string) {
	c.Culture = culture
	if tag, err := language.Parse(culture); err == nil {
		c.Locale = tag
	}
}
