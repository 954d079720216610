package canon

import "strings"

// translit maps common non-ASCII letters to ASCII for slug derivation.
// Covers Latin diacritics and Cyrillic, which is what device site and
// manufacturer names actually contain.
var translit = map[rune]string{
	'ä': "a", 'á': "a", 'à': "a", 'â': "a", 'å': "a", 'ã': "a",
	'ö': "o", 'ó': "o", 'ò': "o", 'ô': "o", 'õ': "o", 'ø': "o",
	'ü': "u", 'ú': "u", 'ù': "u", 'û': "u",
	'ë': "e", 'é': "e", 'è': "e", 'ê': "e",
	'ï': "i", 'í': "i", 'ì': "i", 'î': "i",
	'ñ': "n", 'ç': "c", 'ß': "ss",
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ё': "e", 'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// Slug derives an inventory-of-record slug: lowercase, non-ASCII
// transliterated to ASCII, runs of anything outside [a-z0-9-] collapsed
// to a single "-", leading and trailing "-" trimmed.
func Slug(s string) string {
	var ascii strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			ascii.WriteRune(r)
		default:
			if t, ok := translit[r]; ok {
				ascii.WriteString(t)
			} else {
				ascii.WriteByte(' ') // placeholder, collapsed below
			}
		}
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range ascii.String() {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
