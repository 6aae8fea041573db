package po

import "strings"

// KeySeparator joins msgctxt and msgid in entry keys, mirroring the
// EOT byte MO files use as the context separator.
const KeySeparator = "\x04"

// Key computes the catalog key for a context/singular pair. Entries
// with an empty singular have no key. Line endings are normalized so
// that logically equal messages collide regardless of source platform.
func Key(context, singular string) string {
	if singular == "" {
		return ""
	}
	singular = normalizeNewlines(singular)
	if context == "" {
		return singular
	}
	return normalizeNewlines(context) + KeySeparator + singular
}

func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Translation is a single catalog entry: one msgid block with its
// translations and surrounding comments.
type Translation struct {
	Context  string // msgctxt
	Singular string // msgid
	Plural   string // msgid_plural

	// Translations holds msgstr forms. Index 0 is the singular
	// translation, or form 0 of a plural set.
	Translations []string

	TranslatorComments string   // "# ..." lines, newline-joined
	ExtractedComments  string   // "#. ..." lines, newline-joined
	References         []string // "#: ..." file:line tokens
	Flags              []string // "#, ..." tokens

	// catalog is the owning catalog, set when the entry is added.
	// Read-only back-reference for plural resolution.
	catalog *Catalog
}

// Key returns the entry's catalog key; empty for entries without a
// singular message.
func (t *Translation) Key() string { return Key(t.Context, t.Singular) }

// IsPlural reports whether the entry carries more than one form.
func (t *Translation) IsPlural() bool { return len(t.Translations) > 1 }

// Get returns the singular translation, or "" when untranslated.
func (t *Translation) Get() string {
	if len(t.Translations) == 0 {
		return ""
	}
	return t.Translations[0]
}

// GetPlural resolves the translated form for the quantity n using the
// owning catalog's plural expression. Entries with a single form always
// resolve to it, whatever n. An evaluator result outside the entry's
// translations is a data error (the catalog's declared plural count
// disagrees with the entry) and is surfaced, not clamped.
func (t *Translation) GetPlural(n int) (string, error) {
	if !t.IsPlural() {
		return t.Get(), nil
	}
	if n < 0 {
		n = 0
	}

	var (
		index int
		err   error
	)
	if t.catalog != nil {
		index, err = t.catalog.pluralIndex(uint32(n))
	} else {
		index, err = pluralIndexDefault(uint32(n))
	}
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(t.Translations) {
		return "", Error{
			Expected: "plural index",
			Err:      ErrPluralIndexOutOfRange,
		}
	}
	return t.Translations[index], nil
}

// IsFuzzy reports whether the entry carries the "fuzzy" flag.
func (t *Translation) IsFuzzy() bool { return t.HasFlag("fuzzy") }

// HasFlag reports whether flag appears in the entry's "#," comment.
func (t *Translation) HasFlag(flag string) bool {
	for _, f := range t.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends flag unless already present.
func (t *Translation) AddFlag(flag string) {
	if !t.HasFlag(flag) {
		t.Flags = append(t.Flags, flag)
	}
}

// RemoveFlag drops every occurrence of flag.
func (t *Translation) RemoveFlag(flag string) {
	kept := t.Flags[:0]
	for _, f := range t.Flags {
		if f != flag {
			kept = append(kept, f)
		}
	}
	t.Flags = kept
}

// IsTranslated reports whether every form of the entry is filled in and
// the entry is not fuzzy.
func (t *Translation) IsTranslated() bool {
	if t.Singular == "" || t.IsFuzzy() || len(t.Translations) == 0 {
		return false
	}
	for _, s := range t.Translations {
		if s == "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t, detached from any catalog.
func (t *Translation) Clone() *Translation {
	cp := *t
	cp.catalog = nil
	if t.Translations != nil {
		cp.Translations = append([]string(nil), t.Translations...)
	}
	if t.References != nil {
		cp.References = append([]string(nil), t.References...)
	}
	if t.Flags != nil {
		cp.Flags = append([]string(nil), t.Flags...)
	}
	return &cp
}
