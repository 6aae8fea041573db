package pluralforms

import "strings"

// Rule pairs a plural selector with its declared number of forms.
type Rule struct {
	NPlurals int
	Index    func(n uint32) int
}

// Native wraps the rule as an Expression.
func (r Rule) Native() NativeRule {
	return NativeRule{NPlurals: r.NPlurals, Index: r.Index}
}

// DefaultRule is the Germanic two-form rule ("n != 1") gettext assumes
// when nothing better is known.
var DefaultRule = Rule{NPlurals: 2, Index: twoFormsNotOne}

func zeroForms(uint32) int { return 0 }

func twoFormsNotOne(n uint32) int {
	if n != 1 {
		return 1
	}
	return 0
}

func twoFormsGreaterOne(n uint32) int {
	if n > 1 {
		return 1
	}
	return 0
}

// Manx: forms split on n % 10 in {1, 2} or n % 20 == 0.
func manx(n uint32) int {
	if n%10 == 1 || n%10 == 2 || n%20 == 0 {
		return 0
	}
	return 1
}

// Macedonian: n == 1 and every n ending in 1 are singular.
func macedonian(n uint32) int {
	if n == 1 || n%10 == 1 {
		return 0
	}
	return 1
}

func lithuanian(n uint32) int {
	switch {
	case n%10 == 1 && n%100 != 11:
		return 0
	case n%10 >= 2 && (n%100 < 10 || n%100 >= 20):
		return 1
	}
	return 2
}

func latvian(n uint32) int {
	switch {
	case n%10 == 1 && n%100 != 11:
		return 0
	case n != 0:
		return 1
	}
	return 2
}

func slavic(n uint32) int {
	switch {
	case n%10 == 1 && n%100 != 11:
		return 0
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20):
		return 1
	}
	return 2
}

func czechSlovak(n uint32) int {
	switch {
	case n == 1:
		return 0
	case n >= 2 && n <= 4:
		return 1
	}
	return 2
}

func polish(n uint32) int {
	switch {
	case n == 1:
		return 0
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20):
		return 1
	}
	return 2
}

func romanian(n uint32) int {
	switch {
	case n == 1:
		return 0
	case n == 0 || (n%100 > 0 && n%100 < 20):
		return 1
	}
	return 2
}

func irish(n uint32) int {
	switch {
	case n == 1:
		return 0
	case n == 2:
		return 1
	}
	return 2
}

func slovenian(n uint32) int {
	switch n % 100 {
	case 1:
		return 0
	case 2:
		return 1
	case 3, 4:
		return 2
	}
	return 3
}

func scottishGaelic(n uint32) int {
	switch {
	case n == 1 || n == 11:
		return 0
	case n == 2 || n == 12:
		return 1
	case n > 2 && n < 20:
		return 2
	}
	return 3
}

func arabic(n uint32) int {
	switch {
	case n == 0:
		return 0
	case n == 1:
		return 1
	case n == 2:
		return 2
	case n%100 >= 3 && n%100 <= 10:
		return 3
	case n%100 >= 11:
		return 4
	}
	return 5
}

func welsh(n uint32) int {
	switch n {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	case 6:
		return 4
	}
	return 5
}

// rulesByLanguage maps two-letter ISO 639-1 codes to their plural rule
// family. Languages absent from the table use DefaultRule.
var rulesByLanguage = map[string]Rule{
	// Single form.
	"ja": {1, zeroForms}, "ko": {1, zeroForms}, "vi": {1, zeroForms},
	"th": {1, zeroForms}, "zh": {1, zeroForms}, "id": {1, zeroForms},
	"ms": {1, zeroForms}, "my": {1, zeroForms}, "bo": {1, zeroForms},
	"dz": {1, zeroForms}, "ka": {1, zeroForms}, "km": {1, zeroForms},
	"kk": {1, zeroForms}, "ky": {1, zeroForms}, "lo": {1, zeroForms},
	"fa": {1, zeroForms}, "su": {1, zeroForms}, "tt": {1, zeroForms},
	"ug": {1, zeroForms}, "wo": {1, zeroForms},

	// Two forms, singular only for exactly one.
	// This is the default family; listed members are informative only.

	// Two forms, zero and one both singular.
	"fr": {2, twoFormsGreaterOne}, "br": {2, twoFormsGreaterOne},
	"oc": {2, twoFormsGreaterOne}, "tg": {2, twoFormsGreaterOne},
	"ti": {2, twoFormsGreaterOne}, "tr": {2, twoFormsGreaterOne},
	"uz": {2, twoFormsGreaterOne}, "wa": {2, twoFormsGreaterOne},
	"ak": {2, twoFormsGreaterOne}, "am": {2, twoFormsGreaterOne},
	"ln": {2, twoFormsGreaterOne}, "mg": {2, twoFormsGreaterOne},
	"mi": {2, twoFormsGreaterOne},

	// Irregular two-form languages.
	"gv": {2, manx},
	"mk": {2, macedonian},

	// Three forms.
	"lt": {3, lithuanian},
	"lv": {3, latvian},
	"ru": {3, slavic}, "uk": {3, slavic}, "be": {3, slavic},
	"sr": {3, slavic}, "hr": {3, slavic}, "bs": {3, slavic},
	"cs": {3, czechSlovak}, "sk": {3, czechSlovak},
	"pl": {3, polish},
	"ro": {3, romanian},
	"ga": {3, irish},

	// Four forms.
	"sl": {4, slovenian},
	"gd": {4, scottishGaelic},

	// Six forms.
	"ar": {6, arabic},
	"cy": {6, welsh},
}

// ByLanguage returns the plural rule for a language tag. Only the
// primary subtag is considered ("pt-BR" and "pt_BR" both resolve as
// "pt"). Unknown languages get DefaultRule.
func ByLanguage(lang string) Rule {
	base := strings.ToLower(lang)
	if i := strings.IndexAny(base, "-_."); i >= 0 {
		base = base[:i]
	}
	if r, ok := rulesByLanguage[base]; ok {
		return r
	}
	return DefaultRule
}

// PluralIndex resolves the plural form index for n in the given
// language, returning the index and the language's plural count.
func PluralIndex(lang string, n uint32) (index, nplurals int) {
	r := ByLanguage(lang)
	return r.Index(n), r.NPlurals
}
