package po

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// localeVariants lists the file-name suffixes a culture may appear
// under: the canonical tag plus its underscore- and dot-separated
// spellings. A bare two-letter code has a single spelling.
func localeVariants(culture string) []string {
	canonical := culture
	if tag, err := language.Parse(culture); err == nil {
		canonical = tag.String()
	}

	seen := map[string]bool{}
	var variants []string
	add := func(v string) {
		v = strings.ToLower(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}
	add(canonical)
	if strings.ContainsRune(canonical, '-') {
		add(strings.ReplaceAll(canonical, "-", "_"))
		add(strings.ReplaceAll(canonical, "-", "."))
	}
	if canonical != culture {
		add(culture)
	}
	return variants
}

func baseLanguage(culture string) string {
	base := strings.ToLower(culture)
	if i := strings.IndexAny(base, "-_."); i >= 0 {
		base = base[:i]
	}
	return base
}

// FindCatalogFiles locates the PO files for culture under dir: files
// named "*<locale>.po" for each locale spelling, optionally followed by
// a lower-priority pass on the bare language code, optionally
// recursing. Each file appears once, however many patterns it matches.
func FindCatalogFiles(dir, culture string, opts ReadOptions) ([]string, error) {
	suffixGroups := [][]string{localeVariants(culture)}
	if base := baseLanguage(culture); opts.LanguageFallback && base != strings.ToLower(culture) {
		suffixGroups = append(suffixGroups, []string{base})
	}

	var names []string
	if opts.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				names = append(names, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, filepath.Join(dir, e.Name()))
			}
		}
	}

	seen := map[string]bool{}
	var files []string
	for _, suffixes := range suffixGroups {
		for _, path := range names {
			name := strings.ToLower(filepath.Base(path))
			if !strings.HasSuffix(name, ".po") {
				continue
			}
			stem := strings.TrimSuffix(name, ".po")
			matched := false
			for _, suffix := range suffixes {
				if strings.HasSuffix(stem, suffix) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			resolved := resolvePath(path)
			if seen[resolved] {
				continue
			}
			seen[resolved] = true
			files = append(files, path)
		}
	}
	return files, nil
}

func resolvePath(path string) string {
	if r, err := filepath.EvalSymlinks(path); err == nil {
		path = r
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// ReadAll parses every catalog FindCatalogFiles locates for the
// configured culture. Any file failing to parse fails the whole call;
// callers wanting skip-and-continue semantics iterate the file list
// themselves.
func (r *Reader) ReadAll(dir string) ([]*Catalog, error) {
	files, err := FindCatalogFiles(dir, r.opts.Culture, r.opts)
	if err != nil {
		return nil, err
	}
	catalogs := make([]*Catalog, 0, len(files))
	for _, f := range files {
		cat, err := r.ReadFile(f)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, cat)
	}
	return catalogs, nil
}

// ReadAll parses all catalogs for opts.Culture under dir.
func ReadAll(dir string, opts ReadOptions) ([]*Catalog, error) {
	return NewReader(opts).ReadAll(dir)
}

// Merge reads a translated PO file and a reference POT template and
// folds the template into the catalog: new template entries appear
// untranslated, existing entries get refreshed metadata, translations
// survive untouched.
func Merge(poPath, potPath string) (*Catalog, error) {
	cat, err := ReadFile(poPath, ReadOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	// Templates carry no locale; culture enforcement stays off.
	tpl, err := ReadFile(potPath, ReadOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	cat.MergeWith(tpl)
	return cat, nil
}
