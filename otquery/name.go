package otquery

import (
	"fmt"
	"iter"

	"github.com/npillmayer/cellwidth/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's SFNT
// `name` table.
//
// Only records in currently supported encodings are yielded (Unicode, and
// Windows Unicode BMP); records in other encodings keep an empty decoded
// string and are skipped, as are malformed or out-of-bounds records.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		if otf == nil || otf.Name == nil {
			return
		}
		for _, rec := range otf.Name.Records {
			if !rec.IsUnicode() {
				continue
			}
			raw, err := otf.Name.StringBytes(rec)
			if err != nil {
				tracer().Debugf("name record %d/%d skipped: %v", rec.PlatformID, rec.NameID, err)
				continue
			}
			stringValue, err := decodeNameUTF16(raw)
			if err != nil || stringValue == "" {
				continue
			}
			if !yield(sfnt.NameID(rec.NameID), stringValue) {
				return
			}
		}
	}
}

// FamilyName extracts the font family name from a font's `name` table: the
// first record with name ID 1 that decodes to non-empty text. The second
// return value is false if no such record exists; callers treat that as a
// fatal condition, since a font without a usable name cannot be reported on.
func FamilyName(otf *ot.Font) (string, bool) {
	for nameId, stringValue := range NamesRange(otf) {
		if nameId == sfnt.NameIDFamily {
			return stringValue, true
		}
	}
	return "", false
}

func decodeNameUTF16(str []byte) (string, error) {
	if len(str) == 0 {
		return "", nil
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}
