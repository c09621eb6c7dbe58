package utils

import (
	"regexp"
	"strings"

	"github.com/fiam/gounidecode/unidecode"
	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify transliterates to ASCII and joins words with dashes,
// so "Vợt Yonex Astrox 88D" becomes "vot-yonex-astrox-88d".
func Slugify(s string) string {
	s = strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ToASCII strips diacritics for outputs limited to Latin-1, like core PDF fonts.
func ToASCII(s string) string {
	return unidecode.Unidecode(s)
}

// ShortID returns n upper-case hex characters from a random uuid.
func ShortID(n int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(id) {
		n = len(id)
	}
	return id[:n]
}

// NormalizeCode upper-cases and trims user entered codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
