package po

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
)

// WriteOptions configures catalog serialization.
type WriteOptions struct {
	// ExcludeHeaders omits the msgid "" pseudo-entry.
	ExcludeHeaders bool

	// SkipReferences drops "#:" lines from the output.
	SkipReferences bool

	// WrapWidth is the word-wrap width for "#:" reference lines.
	// Zero means the conventional 77 columns; negative disables
	// wrapping.
	WrapWidth int

	// Encoding encodes stream output; when nil the catalog's declared
	// charset applies, defaulting to plain UTF-8.
	Encoding encoding.Encoding

	// Backup keeps the previous file as "<name>.bak" during SaveChanges.
	Backup bool
}

const defaultWrapWidth = 77

// Writer renders catalogs back to PO text. The output parses back to
// an equal catalog (round-trip safe modulo insignificant whitespace).
type Writer struct {
	opts WriteOptions
}

func NewWriter(opts WriteOptions) *Writer { return &Writer{opts: opts} }

// Export renders the catalog to an in-memory string.
func Export(c *Catalog, opts WriteOptions) string {
	return NewWriter(opts).Export(c)
}

func (w *Writer) Export(c *Catalog) string {
	var b strings.Builder
	w.write(c, &b)
	return b.String()
}

// Write renders the catalog to out, applying the configured or
// catalog-inherited encoding.
func (w *Writer) Write(c *Catalog, out io.Writer) error {
	enc := w.opts.Encoding
	if enc == nil {
		if catEnc, ok := c.GetEncoding(); ok {
			enc = catEnc
		}
	}
	if enc != nil {
		out = enc.NewEncoder().Writer(out)
	}
	_, err := io.WriteString(out, w.Export(c))
	return err
}

// SaveChanges writes the catalog to path without ever leaving a
// half-written file behind: the output goes to a temporary file in the
// same directory and replaces the destination only after a complete
// successful write. With Backup set, the previous file survives as
// "<path>.bak".
func (w *Writer) SaveChanges(c *Catalog, path string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = w.Write(c, tmp); err != nil {
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if w.opts.Backup {
		if _, statErr := os.Stat(path); statErr == nil {
			if err = os.Rename(path, path+".bak"); err != nil {
				return fmt.Errorf("backing up %s: %w", path, err)
			}
		}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (w *Writer) write(c *Catalog, b *strings.Builder) {
	if !w.opts.ExcludeHeaders {
		w.writeHeaderBlock(c, b)
	}
	for _, t := range c.Entries() {
		if t.Singular == "" {
			continue
		}
		w.writeEntry(t, b)
	}
}

func (w *Writer) writeHeaderBlock(c *Catalog, b *strings.Builder) {
	writeCommentLines(b, "#", c.HeaderComments)
	b.WriteString("msgid \"\"\n")

	var block strings.Builder
	for _, h := range c.Headers {
		block.WriteString(h.Name)
		block.WriteString(": ")
		block.WriteString(h.Value)
		block.WriteByte('\n')
	}
	writeField(b, "msgstr", block.String())
	b.WriteByte('\n')
}

func (w *Writer) writeEntry(t *Translation, b *strings.Builder) {
	writeCommentLines(b, "#", t.TranslatorComments)
	writeCommentLines(b, "#.", t.ExtractedComments)
	if !w.opts.SkipReferences {
		w.writeReferences(b, t.References)
	}
	if len(t.Flags) > 0 {
		b.WriteString("#, ")
		b.WriteString(strings.Join(t.Flags, ", "))
		b.WriteByte('\n')
	}
	if t.Context != "" {
		writeField(b, "msgctxt", t.Context)
	}
	writeField(b, "msgid", t.Singular)

	if t.Plural != "" {
		// Entries with a plural id keep the indexed msgstr layout even
		// with a single form, as nplurals=1 languages have.
		writeField(b, "msgid_plural", t.Plural)
		forms := t.Translations
		if len(forms) == 0 {
			forms = []string{""}
		}
		for i, form := range forms {
			writeField(b, fmt.Sprintf("msgstr[%d]", i),
				matchBeginAndEndNewlines(form, t.Plural))
		}
	} else {
		writeField(b, "msgstr", matchBeginAndEndNewlines(t.Get(), t.Singular))
	}
	b.WriteByte('\n')
}

// writeReferences emits "#:" lines, word-wrapped on token boundaries.
func (w *Writer) writeReferences(b *strings.Builder, refs []string) {
	if len(refs) == 0 {
		return
	}
	width := w.opts.WrapWidth
	if width == 0 {
		width = defaultWrapWidth
	}

	line := ""
	flush := func() {
		if line != "" {
			b.WriteString("#: ")
			b.WriteString(line)
			b.WriteByte('\n')
			line = ""
		}
	}
	for _, ref := range refs {
		if line == "" {
			line = ref
			continue
		}
		if width > 0 && len("#: ")+len(line)+1+len(ref) > width {
			flush()
			line = ref
			continue
		}
		line += " " + ref
	}
	flush()
}

// writeCommentLines renders a newline-joined comment value, one
// prefixed physical line each.
func writeCommentLines(b *strings.Builder, prefix, value string) {
	if value == "" {
		return
	}
	for _, line := range strings.Split(value, "\n") {
		if line == "" {
			b.WriteString(prefix)
			b.WriteByte('\n')
			continue
		}
		b.WriteString(prefix)
		b.WriteByte(' ')
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// writeField emits `keyword "value"`, splitting multi-line values into
// continuation lines after a readability-empty first string, the
// conventional PO layout.
func writeField(b *strings.Builder, keyword, value string) {
	segments := poify(value)
	b.WriteString(keyword)
	if len(segments) == 1 {
		b.WriteString(" \"")
		b.WriteString(segments[0])
		b.WriteString("\"\n")
		return
	}
	b.WriteString(" \"\"\n")
	for _, seg := range segments {
		b.WriteByte('"')
		b.WriteString(seg)
		b.WriteString("\"\n")
	}
}

// poify escapes a value and splits it into one quoted segment per
// physical output line. Escaped newlines stay attached to the segment
// they terminate; spurious empty segments between real continuation
// lines are dropped.
func poify(value string) []string {
	lines := strings.Split(value, "\n")
	segments := make([]string, 0, len(lines))
	for i, line := range lines {
		seg := escapePO(line)
		if i < len(lines)-1 {
			seg += `\n`
		}
		// A trailing value newline leaves an empty last part; dropping
		// empty segments keeps spurious "" lines out of the output.
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return []string{""}
	}
	return segments
}

func escapePO(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// matchBeginAndEndNewlines forces the translated value to begin and end
// with a newline exactly when the source string does, preserving the
// gettext convention that blank-line framing mirrors the original.
func matchBeginAndEndNewlines(translated, source string) string {
	if translated == "" || source == "" {
		return translated
	}
	if strings.HasPrefix(source, "\n") {
		if !strings.HasPrefix(translated, "\n") {
			translated = "\n" + translated
		}
	} else {
		translated = strings.TrimLeft(translated, "\n")
	}
	if strings.HasSuffix(source, "\n") {
		if !strings.HasSuffix(translated, "\n") {
			translated += "\n"
		}
	} else {
		translated = strings.TrimRight(translated, "\n")
	}
	return translated
}
