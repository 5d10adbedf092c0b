package health

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextDecoder turns raw document bytes into text. It tries strict UTF-8,
// then each fallback encoding in order, and finally substitutes undecodable
// bytes with U+FFFD. Decoding never fails.
type TextDecoder struct {
	names     []string
	encodings []encoding.Encoding
}

// NewTextDecoder creates a decoder with the given fallback encodings, named
// as in the WHATWG encoding index (e.g. "shift_jis", "euc-jp").
// Unknown names are logged and skipped.
func NewTextDecoder(fallbacks ...string) *TextDecoder {
	d := &TextDecoder{}
	for _, name := range fallbacks {
		enc, err := htmlindex.Get(name)
		if err != nil {
			zap.L().Warn("health: unknown fallback encoding", zap.String("encoding", name), zap.Error(err))
			continue
		}
		d.names = append(d.names, name)
		d.encodings = append(d.encodings, enc)
	}
	return d
}

// Decode returns the decoded text and the name of the encoding that
// produced it ("utf-8", a fallback name, or "utf-8-replace").
//
// Legacy Japanese encodings overlap: EUC-JP bytes are also valid Shift_JIS
// half-width katakana. Every fallback that decodes cleanly is therefore
// scored and the most plausible text wins; ties go to the earlier fallback.
func (d *TextDecoder) Decode(data []byte) (string, string) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	best, bestName, bestScore := "", "", 0
	for i, enc := range d.encodings {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		// x/text decoders substitute rather than fail on invalid input;
		// a replacement rune means this encoding is not the right one.
		if bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		text := string(out)
		if score := plausibility(text); bestName == "" || score > bestScore {
			best, bestName, bestScore = text, d.names[i], score
		}
	}
	if bestName != "" {
		return best, bestName
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), "utf-8-replace"
}

// plausibility rewards full-width Japanese script and penalises half-width
// katakana, which real documents rarely contain but misdecoded bytes do.
func plausibility(text string) int {
	score := 0
	for _, r := range text {
		switch {
		case r >= 0xFF61 && r <= 0xFF9F:
			score -= 2
		case unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han),
			r >= 0x3000 && r <= 0x303F,
			r >= 0xFF01 && r <= 0xFF60:
			score++
		}
	}
	return score
}
