// Package fingerprint derives the stable short hash that identifies a
// generation input. It seeds the content generator and is stored on every
// generated document as its inputs hash.
package fingerprint

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dejo1307/autodocs/internal/docs"
)

// Fingerprint returns the lowercase hex checksum of the canonical
// serialization of input. Identical inputs always produce identical output;
// sequence order is significant.
func Fingerprint(input docs.GenerationInput) string {
	return Checksum(Canonical(input))
}

// Canonical returns the compact JSON form of input with field order fixed by
// the struct declaration and nil sequences written as empty arrays. Only
// characters JSON requires are escaped: <, >, & and U+2028/U+2029 are
// written raw, matching JSON.stringify.
func Canonical(input docs.GenerationInput) []byte {
	input.SelectedSources = orEmpty(input.SelectedSources)
	input.SelectedCommitIDs = orEmpty(input.SelectedCommitIDs)
	input.DocTypes = orEmpty(input.DocTypes)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// GenerationInput holds only strings and string slices, so Encode cannot fail.
	_ = enc.Encode(input)
	return unescapeSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// unescapeSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into raw runes. Other escape pairs are copied as is,
// so an escaped backslash followed by "u2028" is left alone.
func unescapeSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' {
			out = append(out, b[i])
			continue
		}
		if i+5 < len(b) && b[i+1] == 'u' && string(b[i+2:i+5]) == "202" && (b[i+5] == '8' || b[i+5] == '9') {
			r := '\u2028'
			if b[i+5] == '9' {
				r = '\u2029'
			}
			out = utf8.AppendRune(out, r)
			i += 5
			continue
		}
		out = append(out, b[i])
		if i+1 < len(b) {
			i++
			out = append(out, b[i])
		}
	}
	return out
}

// Checksum folds s into a signed 32-bit multiply-by-31 rolling hash over its
// UTF-16 code units and renders the absolute value in hex.
func Checksum(s []byte) string {
	var acc int32
	for _, unit := range utf16.Encode([]rune(string(s))) {
		acc = acc*31 + int32(unit)
	}
	v := int64(acc)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
