package po

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bigabdoul/polib/pluralforms"
	"golang.org/x/text/language"
)

// ReadOptions configures catalog reads.
type ReadOptions struct {
	// Culture explicitly sets the catalog locale. During file reads a
	// locale inferred from the file name takes precedence; the Language
	// header is the last fallback.
	Culture string

	// SkipComments drops translator/extracted comments, references and
	// flags while parsing. Placement of comment lines is still
	// validated.
	SkipComments bool

	// EnforceCulture fails the read when the resolved culture is not a
	// recognizable language tag. Relaxed by default: header-only reads
	// and merge templates tolerate an absent or odd culture.
	EnforceCulture bool

	// Recursive descends into subdirectories during ReadAll.
	Recursive bool

	// LanguageFallback makes ReadAll run a second, lower-priority scan
	// pass using just the two-letter language code when the culture has
	// a region.
	LanguageFallback bool
}

// Reader parses PO text into catalogs.
type Reader struct {
	opts ReadOptions
}

func NewReader(opts ReadOptions) *Reader { return &Reader{opts: opts} }

// Read parses a whole PO document from text. It either returns a fully
// populated catalog or an error; a format error never yields a partial
// catalog.
func Read(text string, opts ReadOptions) (*Catalog, error) {
	return NewReader(opts).Read(text)
}

// ReadFile parses the PO file at path, detecting its character
// encoding from the Content-Type header or a byte-order mark.
func ReadFile(path string, opts ReadOptions) (*Catalog, error) {
	return NewReader(opts).ReadFile(path)
}

func (r *Reader) Read(text string) (*Catalog, error) {
	return r.read(text, "")
}

func (r *Reader) ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	cat, err := r.read(text, path)
	if err != nil {
		return nil, err
	}
	cat.FileName = filepath.Clean(path)
	cat.FileID = FileID(path)
	cat.LastAccessTime = time.Now()
	return cat, nil
}

func (r *Reader) read(text, path string) (*Catalog, error) {
	p := &parser{
		opts: r.opts,
		cat:  NewCatalog(),
		cur:  &Translation{},
		pos:  Position{Filename: path},
	}

	for text != "" {
		line, rest, found := strings.Cut(text, "\n")
		if found {
			line += "\n"
		}
		text = rest
		p.pos.Line++
		if err := p.feed(strings.TrimRight(line, "\r\n")); err != nil {
			return nil, err
		}
	}
	if err := p.flush(); err != nil {
		return nil, err
	}

	if err := p.resolveCulture(path); err != nil {
		return nil, err
	}
	return p.cat, nil
}

// resolveCulture applies the fallback chain: file name, explicit
// option, Language header.
func (p *parser) resolveCulture(path string) error {
	culture := ""
	if path != "" {
		culture = cultureFromFileName(filepath.Base(path))
	}
	if culture == "" {
		culture = p.opts.Culture
	}
	if culture == "" {
		culture, _ = p.cat.GetHeader("Language")
	}
	if culture == "" {
		if p.opts.EnforceCulture {
			return fmt.Errorf("%w: no culture resolved", ErrBadCulture)
		}
		return nil
	}
	if _, err := language.Parse(culture); err != nil && p.opts.EnforceCulture {
		return fmt.Errorf("%w: %q", ErrBadCulture, culture)
	}
	p.cat.setCulture(culture)
	return nil
}

var localeSuffixRe = regexp.MustCompile(
	`^[A-Za-z]{2,3}(?:[-_.][A-Za-z0-9]{2,8})?$`)

// cultureFromFileName extracts a locale from names like "messages.fr.po",
// "app_fr_FR.po" or "fr-FR.po".
func cultureFromFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	segments := strings.FieldsFunc(base, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	// Prefer the longest plausible tag: "fr-FR" over "FR".
	for take := 2; take >= 1; take-- {
		if len(segments) < take {
			continue
		}
		candidate := strings.Join(segments[len(segments)-take:], "-")
		if !localeSuffixRe.MatchString(candidate) {
			continue
		}
		if tag, err := language.Parse(candidate); err == nil {
			return tag.String()
		}
	}
	return ""
}

type parseContext uint8

const (
	ctxNone parseContext = iota
	ctxComment
	ctxMsgctxt
	ctxMsgid
	ctxMsgidPlural
	ctxMsgstr
	ctxMsgstrPlural
)

type parser struct {
	opts ReadOptions
	cat  *Catalog
	cur  *Translation
	ctx  parseContext
	pos  Position

	// index of the msgstr[n] form currently receiving continuations
	pluralIndex int
}

var (
	msgstrIndexedRe = regexp.MustCompile(`^msgstr\[(\d+)\]\s*(.*)$`)
	flagSplitRe     = regexp.MustCompile(`,\s*`)
)

// feed classifies one physical line. The checks follow a fixed
// priority; the first match wins, and any non-blank line matching
// nothing is a fatal format error.
func (p *parser) feed(line string) error {
	switch {
	case strings.HasPrefix(line, "#"):
		return p.comment(line)

	case strings.HasPrefix(line, "msgctxt"):
		if p.ctx != ctxNone && p.ctx != ctxComment {
			return p.errf("msgid or blank line", ErrMisplacedMsgctxt)
		}
		v, err := p.unquote(strings.TrimPrefix(line, "msgctxt"))
		if err != nil {
			return err
		}
		p.cur.Context = v
		p.ctx = ctxMsgctxt
		return nil

	case strings.HasPrefix(line, "msgid_plural"):
		if p.ctx != ctxMsgid {
			return p.errf("msgid before msgid_plural", ErrMisplacedMsgidPlural)
		}
		v, err := p.unquote(strings.TrimPrefix(line, "msgid_plural"))
		if err != nil {
			return err
		}
		p.cur.Plural = v
		p.ctx = ctxMsgidPlural
		return nil

	case strings.HasPrefix(line, "msgid"):
		if p.ctx != ctxNone && p.ctx != ctxComment && p.ctx != ctxMsgctxt {
			return p.errf("blank line before msgid", ErrMisplacedMsgid)
		}
		v, err := p.unquote(strings.TrimPrefix(line, "msgid"))
		if err != nil {
			return err
		}
		p.cur.Singular = v
		p.ctx = ctxMsgid
		return nil

	case strings.HasPrefix(line, "msgstr["):
		m := msgstrIndexedRe.FindStringSubmatch(line)
		if m == nil {
			return p.errf("msgstr[n] \"...\"", ErrBadPluralIndex)
		}
		if p.ctx != ctxMsgidPlural && p.ctx != ctxMsgstrPlural {
			return p.errf("msgid_plural before msgstr[n]", ErrMisplacedMsgstrPlural)
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return p.errf("msgstr index", ErrBadPluralIndex)
		}
		v, err := p.unquote(m[2])
		if err != nil {
			return err
		}
		for len(p.cur.Translations) <= index {
			p.cur.Translations = append(p.cur.Translations, "")
		}
		p.cur.Translations[index] = v
		p.pluralIndex = index
		p.ctx = ctxMsgstrPlural
		return nil

	case strings.HasPrefix(line, "msgstr"):
		if p.ctx != ctxMsgid {
			return p.errf("msgid before msgstr", ErrMisplacedMsgstr)
		}
		v, err := p.unquote(strings.TrimPrefix(line, "msgstr"))
		if err != nil {
			return err
		}
		p.cur.Translations = append(p.cur.Translations, v)
		p.ctx = ctxMsgstr
		return nil

	case strings.HasPrefix(strings.TrimSpace(line), `"`):
		return p.continuation(line)

	case strings.TrimSpace(line) == "":
		return p.flush()

	default:
		return p.errf("comment, keyword or quoted line", ErrUnexpectedLine)
	}
}

// comment dispatches a '#' line on its second character. Comments are
// only legal before any msgctxt/msgid content of the block.
func (p *parser) comment(line string) error {
	if p.ctx != ctxNone && p.ctx != ctxComment {
		return p.errf("comments before message content", ErrMisplacedComment)
	}
	p.ctx = ctxComment
	if p.opts.SkipComments {
		return nil
	}

	var kind byte
	if len(line) > 1 {
		kind = line[1]
	}
	switch kind {
	case ':':
		p.cur.References = append(p.cur.References,
			strings.Fields(line[2:])...)
	case '.':
		p.cur.ExtractedComments = appendCommentLine(
			p.cur.ExtractedComments, trimCommentPrefix(line[2:]))
	case ',':
		for _, f := range flagSplitRe.Split(strings.TrimSpace(line[2:]), -1) {
			if f != "" {
				p.cur.Flags = append(p.cur.Flags, f)
			}
		}
	default:
		// Plain translator comments, including "#" alone and the
		// obsolete "#~" marker, which is preserved verbatim.
		rest := line[1:]
		p.cur.TranslatorComments = appendCommentLine(
			p.cur.TranslatorComments, trimCommentPrefix(rest))
	}
	return nil
}

func trimCommentPrefix(s string) string {
	return strings.TrimPrefix(s, " ")
}

func appendCommentLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

// continuation appends a bare quoted line to whichever field the
// current context points at.
func (p *parser) continuation(line string) error {
	v, err := p.unquote(line)
	if err != nil {
		return err
	}
	switch p.ctx {
	case ctxMsgctxt:
		p.cur.Context += v
	case ctxMsgid:
		p.cur.Singular += v
	case ctxMsgidPlural:
		p.cur.Plural += v
	case ctxMsgstr:
		p.cur.Translations[0] += v
	case ctxMsgstrPlural:
		p.cur.Translations[p.pluralIndex] += v
	default:
		return p.errf("msgid/msgstr before continuation", ErrMisplacedContinuation)
	}
	return nil
}

var pluralFormsRe = regexp.MustCompile(
	`(?i)nplurals\s*=\s*(\d+)\s*;\s*plural\s*=\s*(.+?);?\s*$`)

// flush terminates the entry under construction: the header
// pseudo-entry is folded into the catalog metadata, real entries are
// appended (first occurrence of a key wins, duplicates are dropped).
func (p *parser) flush() error {
	defer func() {
		p.cur = &Translation{}
		p.ctx = ctxNone
		p.pluralIndex = 0
	}()

	if p.ctx == ctxNone {
		return nil
	}

	if p.cur.Singular == "" {
		p.header()
		return nil
	}

	p.cur.Singular = normalizeNewlines(p.cur.Singular)
	p.cur.Context = normalizeNewlines(p.cur.Context)
	p.cur.Plural = normalizeNewlines(p.cur.Plural)
	for i, tr := range p.cur.Translations {
		p.cur.Translations[i] = normalizeNewlines(tr)
	}
	p.cat.Add(p.cur)
	return nil
}

// header consumes the msgid "" pseudo-entry.
func (p *parser) header() {
	if p.cur.TranslatorComments != "" {
		p.cat.HeaderComments = p.cur.TranslatorComments
	}
	if len(p.cur.Translations) == 0 {
		return
	}

	block := normalizeNewlines(p.cur.Translations[0])
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		name := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if name == "" {
			continue
		}
		p.cat.SetHeader(name, value)
	}

	if pf, ok := p.cat.GetHeader("Plural-Forms"); ok {
		expr, count := parsePluralForms(pf)
		p.cat.setPluralForms(expr, count)
	}
	if p.cat.Culture == "" && p.opts.Culture == "" {
		if lang, ok := p.cat.GetHeader("Language"); ok && lang != "" {
			p.cat.setCulture(lang)
		}
	}
}

// parsePluralForms extracts nplurals and the selector expression,
// defaulting to the Germanic rule when the header is malformed or its
// expression does not compile.
func parsePluralForms(header string) (expr string, count int) {
	m := pluralFormsRe.FindStringSubmatch(header)
	if m == nil {
		return "n != 1", 2
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return "n != 1", 2
	}
	expr = m[2]
	if _, err := pluralforms.Compile(expr); err != nil {
		return "n != 1", 2
	}
	return expr, count
}

// unquote strips the surrounding double quotes of a physical line and
// interprets PO backslash escapes.
func (p *parser) unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", p.errf("quoted string", ErrBadStringLiteral)
	}
	return unpoify(s[1 : len(s)-1]), nil
}

// unpoify resolves backslash escapes. Unknown escapes lose the
// backslash but keep the character.
func unpoify(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func (p *parser) errf(expected string, err error) error {
	return Error{Pos: p.pos, Expected: expected, Err: err}
}
