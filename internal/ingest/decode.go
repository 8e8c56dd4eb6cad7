// Package ingest copies terminal-exported signal files into the public
// data directory as clean UTF-8 JSON.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrUndecodable is returned when no candidate encoding yields JSON.
var ErrUndecodable = errors.New("no encoding produced valid JSON")

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Tried in order after BOM sniffing. A nil encoding means the bytes are
// taken as UTF-8.
var candidates = []candidate{
	{"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{"utf-8", nil},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// Decode returns raw as UTF-8 JSON text along with the encoding that
// worked. Leading BOMs, U+FFFE, NULs and surrounding whitespace are removed.
func Decode(raw []byte) ([]byte, string, error) {
	if name, enc, ok := sniffBOM(raw); ok {
		if text, ok := try(raw, enc); ok {
			return text, name, nil
		}
	}
	for _, c := range candidates {
		if text, ok := try(raw, c.enc); ok {
			return text, c.name, nil
		}
	}
	return nil, "", ErrUndecodable
}

func sniffBOM(raw []byte) (string, encoding.Encoding, bool) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8-bom", nil, true
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return "utf-16le-bom", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), true
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return "utf-16be-bom", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), true
	}
	return "", nil, false
}

func try(raw []byte, enc encoding.Encoding) ([]byte, bool) {
	var text []byte
	if enc == nil {
		if !utf8.Valid(raw) {
			return nil, false
		}
		text = raw
	} else {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, false
		}
		text = out
	}
	cleaned := clean(string(text))
	if cleaned == "" || !json.Valid([]byte(cleaned)) {
		return nil, false
	}
	return []byte(cleaned), true
}

func clean(s string) string {
	s = strings.TrimLeft(s, "\ufeff\ufffe\x00")
	s = strings.TrimRight(s, "\x00")
	return strings.TrimSpace(s)
}
