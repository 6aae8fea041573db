package po_test

import (
	"testing"

	"github.com/bigabdoul/polib/po"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const fixturePO = `# French translation for demo.
# Copyright (C) 2016 demo contributors.
#
msgid ""
msgstr ""
"Project-Id-Version: demo 1.4\n"
"Report-Msgid-Bugs-To: bugs@example.com\n"
"PO-Revision-Date: 2016-03-14 21:00+0100\n"
"Last-Translator: Jean Dupont <jean@example.com>\n"
"Language: fr\n"
"MIME-Version: 1.0\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Content-Transfer-Encoding: 8bit\n"
"Plural-Forms: nplurals=2; plural=n > 1;\n"

#: ../src/media.c:240
msgid "Settings"
msgstr "Réglages"

#. The window title.
#: ../src/media.c:252 ../src/media.c:260
#, c-format, fuzzy
msgid "Media library"
msgstr "Médiathèque"

msgctxt "menu"
msgid "Open"
msgstr "Ouvrir"

#: ../src/trash.c:16
msgid "{0} media file restored from the trash."
msgid_plural "{0} media files restored from the trash."
msgstr[0] "{0} fichier multimédia restauré de la corbeille."
msgstr[1] "{0} fichiers multimédias restaurés de la corbeille."

msgid ""
"Multi\n"
"line"
msgstr ""
"Multiligne\n"
"valeur"
`

func TestReadFixture(t *testing.T) {
	t.Parallel()

	cat, err := po.Read(fixturePO, po.ReadOptions{})
	require.NoError(t, err)

	require.Len(t, cat.Headers, 9)
	require.Equal(t, 5, cat.Len())
	require.Equal(t, "fr", cat.Culture)
	require.Equal(t, 2, cat.PluralCount)
	require.Equal(t,
		"French translation for demo.\nCopyright (C) 2016 demo contributors.\n",
		cat.HeaderComments)

	lang, ok := cat.GetHeader("language")
	require.True(t, ok)
	require.Equal(t, "fr", lang)

	charset, ok := cat.GetCharset()
	require.True(t, ok)
	require.Equal(t, "UTF-8", charset)

	enc, ok := cat.GetEncoding()
	require.True(t, ok)
	require.Equal(t, unicode.UTF8, enc)
}

func TestReadFixtureEntries(t *testing.T) {
	t.Parallel()

	cat, err := po.Read(fixturePO, po.ReadOptions{})
	require.NoError(t, err)

	settings, ok := cat.Get("Settings")
	require.True(t, ok)
	require.Equal(t, "Réglages", settings.Get())
	require.Equal(t, []string{"../src/media.c:240"}, settings.References)
	require.False(t, settings.IsPlural())

	media, ok := cat.Get("Media library")
	require.True(t, ok)
	require.Equal(t, "The window title.", media.ExtractedComments)
	require.Equal(t,
		[]string{"../src/media.c:252", "../src/media.c:260"},
		media.References)
	require.Equal(t, []string{"c-format", "fuzzy"}, media.Flags)
	require.True(t, media.IsFuzzy())
	require.False(t, media.IsTranslated())

	open, ok := cat.Get(po.Key("menu", "Open"))
	require.True(t, ok)
	require.Equal(t, "menu", open.Context)
	require.Equal(t, "Ouvrir", open.Get())

	multi, ok := cat.Get("Multi\nline")
	require.True(t, ok)
	require.Equal(t, "Multiligne\nvaleur", multi.Get())
}

func TestReadFixturePlural(t *testing.T) {
	t.Parallel()

	cat, err := po.Read(fixturePO, po.ReadOptions{})
	require.NoError(t, err)

	entry, ok := cat.Get("{0} media file restored from the trash.")
	require.True(t, ok)
	require.True(t, entry.IsPlural())
	require.Len(t, entry.Translations, 2)

	// Plural-Forms declares "n > 1".
	one, err := entry.GetPlural(1)
	require.NoError(t, err)
	require.Equal(t, "{0} fichier multimédia restauré de la corbeille.", one)

	many, err := entry.GetPlural(3)
	require.NoError(t, err)
	require.Equal(t, "{0} fichiers multimédias restaurés de la corbeille.", many)
}

func TestReadPluralFallbackRule(t *testing.T) {
	t.Parallel()

	// No Plural-Forms header: the language table decides.
	const text = `msgid ""
msgstr "Language: ru\n"

msgid "item"
msgid_plural "items"
msgstr[0] "предмет"
msgstr[1] "предмета"
msgstr[2] "предметов"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, "ru", cat.Culture)

	entry, ok := cat.Get("item")
	require.True(t, ok)
	form, err := entry.GetPlural(13)
	require.NoError(t, err)
	require.Equal(t, "предметов", form)
	require.Equal(t, 3, cat.PluralCount)
}

func TestReadSingleFormBoundary(t *testing.T) {
	t.Parallel()

	const text = `msgid "one form"
msgid_plural "one forms"
msgstr[0] "única"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	entry, ok := cat.Get("one form")
	require.True(t, ok)
	require.False(t, entry.IsPlural())

	for _, n := range []int{0, 1, 2, 100} {
		form, err := entry.GetPlural(n)
		require.NoError(t, err)
		require.Equal(t, "única", form)
	}
}

func TestReadPluralIndexOutOfRange(t *testing.T) {
	t.Parallel()

	// Arabic declares six forms but the entry carries only two.
	const text = `msgid ""
msgstr ""
"Language: ar\n"
"Plural-Forms: nplurals=6; plural=n == 0 ? 0 : n == 1 ? 1 : n == 2 ? 2 : n % 100 >= 3 && n % 100 <= 10 ? 3 : n % 100 >= 11 ? 4 : 5;\n"

msgid "thing"
msgid_plural "things"
msgstr[0] "a"
msgstr[1] "b"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	entry, ok := cat.Get("thing")
	require.True(t, ok)
	_, err = entry.GetPlural(13)
	require.ErrorIs(t, err, po.ErrPluralIndexOutOfRange)
}

func TestReadDuplicateKeyFirstWins(t *testing.T) {
	t.Parallel()

	const text = `msgid "dup"
msgstr "first"

msgid "dup"
msgstr "second"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	entry, ok := cat.Get("dup")
	require.True(t, ok)
	require.Equal(t, "first", entry.Get())
}

func TestReadMalformedPluralFormsDefaults(t *testing.T) {
	t.Parallel()

	const text = `msgid ""
msgstr "Plural-Forms: nplurals=3; plural=n $$ 1;\n"

msgid "x"
msgid_plural "xs"
msgstr[0] "a"
msgstr[1] "b"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, cat.PluralCount)

	entry, _ := cat.Get("x")
	form, err := entry.GetPlural(5)
	require.NoError(t, err)
	require.Equal(t, "b", form)
}

func TestReadSkipComments(t *testing.T) {
	t.Parallel()

	cat, err := po.Read(fixturePO, po.ReadOptions{SkipComments: true})
	require.NoError(t, err)

	media, ok := cat.Get("Media library")
	require.True(t, ok)
	require.Empty(t, media.ExtractedComments)
	require.Empty(t, media.References)
	require.Empty(t, media.Flags)
	require.Equal(t, "Médiathèque", media.Get())
}

func TestReadFormatErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		text string
		err  error
	}{
		{"msgstr without msgid", "msgstr \"x\"\n", po.ErrMisplacedMsgstr},
		{"comment after content", "msgid \"a\"\nmsgstr \"b\"\n# late\n",
			po.ErrMisplacedComment},
		{"unrecognized line", "what is this\n", po.ErrUnexpectedLine},
		{"plural msgstr without plural", "msgid \"a\"\nmsgstr[0] \"b\"\n",
			po.ErrMisplacedMsgstrPlural},
		{"leading msgid_plural", "msgid_plural \"x\"\n", po.ErrMisplacedMsgidPlural},
		{"leading continuation", "\"floating\"\n", po.ErrMisplacedContinuation},
		{"unquoted msgid", "msgid stuff\n", po.ErrBadStringLiteral},
		{"msgctxt after msgid", "msgid \"a\"\nmsgctxt \"c\"\n",
			po.ErrMisplacedMsgctxt},
		{"double msgstr", "msgid \"a\"\nmsgstr \"b\"\nmsgstr \"c\"\n",
			po.ErrMisplacedMsgstr},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := po.Read(tt.text, po.ReadOptions{})
			require.ErrorIs(t, err, tt.err)

			var perr po.Error
			require.ErrorAs(t, err, &perr)
			require.Positive(t, perr.Pos.Line)
		})
	}
}

func TestReadEnforceCulture(t *testing.T) {
	t.Parallel()

	_, err := po.Read("msgid \"a\"\nmsgstr \"b\"\n", po.ReadOptions{
		Culture:        "!!not-a-locale!!",
		EnforceCulture: true,
	})
	require.ErrorIs(t, err, po.ErrBadCulture)

	// Relaxed mode keeps the raw string.
	cat, err := po.Read("msgid \"a\"\nmsgstr \"b\"\n", po.ReadOptions{
		Culture: "!!not-a-locale!!",
	})
	require.NoError(t, err)
	require.Equal(t, "!!not-a-locale!!", cat.Culture)
}

func TestReadEscapes(t *testing.T) {
	t.Parallel()

	const text = `msgid "tab\there \"quoted\" back\\slash"
msgstr "x\qy"
`
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	entry, ok := cat.Get("tab\there \"quoted\" back\\slash")
	require.True(t, ok)
	// Unknown escapes drop the backslash.
	require.Equal(t, "xqy", entry.Get())
}

func TestReadNormalizesNewlinesInKeys(t *testing.T) {
	t.Parallel()

	const text = "msgid \"a\\r\\nb\"\nmsgstr \"c\"\n"
	cat, err := po.Read(text, po.ReadOptions{})
	require.NoError(t, err)
	_, ok := cat.Get("a\nb")
	require.True(t, ok)
}

func TestKeyUniqueness(t *testing.T) {
	t.Parallel()

	require.Equal(t, po.Key("a", "m"), po.Key("a", "m"))
	require.NotEqual(t, po.Key("a", "m"), po.Key("b", "m"))
	require.NotEqual(t, po.Key("", "m"), po.Key("b", "m"))
	require.Empty(t, po.Key("ctx", ""))
}
