package partition

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// decodeSource turns the resolved bytes into a string. Text sources
// pass through untouched; an explicit encoding must decode cleanly;
// otherwise the encoding is detected. HTML sources get the meta-charset
// prescan first.
func decodeSource(sd sourceData, opts Options, forHTML bool) (string, error) {
	if sd.decoded {
		return sd.text, nil
	}
	if opts.Encoding != "" {
		return decodeAs(sd.data, opts.Encoding)
	}
	if forHTML {
		return decodeHTMLBytes(sd.data, sd.contentType)
	}
	return decodeAuto(sd.data), nil
}

// decodeAs decodes with a caller-named encoding and fails loudly when
// the bytes do not fit it.
func decodeAs(data []byte, name string) (string, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	label = strings.ReplaceAll(label, "_", "-")

	switch strings.ReplaceAll(label, "-", "") {
	case "utf8":
		if !utf8.Valid(data) {
			return "", &DecodeError{Encoding: name, Err: fmt.Errorf("invalid UTF-8 byte sequence")}
		}
		return stripBOMMarker(string(bytes.TrimPrefix(data, bomUTF8))), nil
	case "utf16":
		// A BOM is required to pick the byte order.
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data, name)
	case "utf16be":
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), data, name)
	case "utf16le":
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), data, name)
	case "utf32":
		return decodeWith(utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM), data, name)
	case "utf32be":
		return decodeWith(utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), data, name)
	case "utf32le":
		return decodeWith(utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), data, name)
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", &DecodeError{Encoding: name, Err: err}
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: name, Err: err}
	}
	if introducedReplacement(data, out) {
		return "", &DecodeError{Encoding: name, Err: fmt.Errorf("byte sequence outside the encoding")}
	}
	return stripBOMMarker(string(out)), nil
}

func decodeWith(enc encoding.Encoding, data []byte, name string) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: name, Err: err}
	}
	return stripBOMMarker(string(out)), nil
}

// decodeAuto detects the encoding of raw bytes: BOM, then the
// interleaved-NUL shape of BOM-less UTF-16, then valid UTF-8 as-is,
// then a chardet guess, and finally windows-1252, which accepts any
// byte.
func decodeAuto(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	// UTF-32 LE shares its first two bytes with UTF-16 LE, so the
	// four-byte marks are checked first.
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		if rest := data[len(bomUTF8):]; utf8.Valid(rest) {
			return stripBOMMarker(string(rest))
		}
	case bytes.HasPrefix(data, bomUTF32LE):
		if out, err := utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder().Bytes(data); err == nil {
			return stripBOMMarker(string(out))
		}
	case bytes.HasPrefix(data, bomUTF32BE):
		if out, err := utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder().Bytes(data); err == nil {
			return stripBOMMarker(string(out))
		}
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		if out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data); err == nil {
			return stripBOMMarker(string(out))
		}
	}

	// BOM-less UTF-16 of ASCII text is byte-valid UTF-8, so the
	// interleaved-NUL probe has to run before the UTF-8 check.
	if enc := detectInterleavedNUL(data); enc != nil {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return stripBOMMarker(string(out))
		}
	}

	if utf8.Valid(data) {
		return stripBOMMarker(string(data))
	}

	if result, err := chardet.NewTextDetector().DetectBest(data); err == nil {
		if enc, err := htmlindex.Get(strings.ToLower(result.Charset)); err == nil {
			if out, err := enc.NewDecoder().Bytes(data); err == nil && !introducedReplacement(data, out) {
				return stripBOMMarker(string(out))
			}
		}
	}

	out, _ := charmap.Windows1252.NewDecoder().Bytes(data)
	return stripBOMMarker(string(out))
}

// decodeHTMLBytes runs the HTML-aware detection: Content-Type charset
// parameter, BOM, and meta prescan via x/net/html/charset. When that
// only produced the windows-1252 default without certainty, the shared
// chain decides instead.
func decodeHTMLBytes(data []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if certain || name != "windows-1252" {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return stripBOMMarker(string(out)), nil
		}
	}
	return decodeAuto(data), nil
}

// detectInterleavedNUL spots BOM-less UTF-16 holding mostly-ASCII text:
// every other byte is zero, on the side the byte order dictates.
func detectInterleavedNUL(data []byte) encoding.Encoding {
	if len(data) < 4 || len(data)%2 != 0 {
		return nil
	}
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	var even, odd int
	for i, b := range sample {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	pairs := len(sample) / 2
	switch {
	case odd >= pairs/2 && even == 0:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case even >= pairs/2 && odd == 0:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return nil
}

// introducedReplacement reports whether decoding produced U+FFFD runes
// that the input did not already carry.
func introducedReplacement(in, out []byte) bool {
	return bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(in, utf8.RuneError)
}

func stripBOMMarker(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
