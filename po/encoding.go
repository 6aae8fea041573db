package po

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeBytes turns raw PO file bytes into text. The header block is
// probed for a Content-Type charset first; failing that the byte-order
// mark decides; with neither, the bytes are taken as-is (7-bit-safe
// default).
func decodeBytes(data []byte) (string, error) {
	if name, ok := probeCharset(data); ok {
		if isUTF8Name(name) {
			return string(bytes.TrimPrefix(data, utf8BOM)), nil
		}
		if enc, err := htmlindex.Get(name); err == nil {
			decoded, err := enc.NewDecoder().Bytes(data)
			if err != nil {
				return "", fmt.Errorf("charset %s: %w", name, err)
			}
			return string(decoded), nil
		}
		// Unknown charset name: fall through to the BOM.
	}

	if enc, ok := sniffBOM(data); ok {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding BOM-marked file: %w", err)
		}
		return string(decoded), nil
	}

	return string(data), nil
}

// probeCharset searches the header block for a charset declaration.
// Only works on ASCII-compatible encodings, which is exactly the case
// where no BOM can disambiguate.
func probeCharset(data []byte) (string, bool) {
	head := bytes.TrimPrefix(data, utf8BOM)
	if i := bytes.Index(head, []byte("\n\n")); i >= 0 {
		head = head[:i]
	} else if len(head) > 4096 {
		head = head[:4096]
	}
	m := charsetRe.FindSubmatch(head)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8", "ascii", "us-ascii":
		return true
	}
	return false
}

// sniffBOM recognizes UTF-8, UTF-16 and UTF-32 byte-order marks.
// UTF-32 is checked before UTF-16: its little-endian mark starts with
// the UTF-16 one.
func sniffBOM(data []byte) (encoding.Encoding, bool) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return unicode.UTF8BOM, true
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM), true
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM), true
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), true
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), true
	}
	return nil, false
}
