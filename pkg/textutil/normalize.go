package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// quita marcas diacríticas tras descomponer (NFD) y recompone (NFC)
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normaliza texto para búsquedas: minúsculas y sin acentos, de modo que
// "Fríjol" y "frijol" coincidan. Si la transformación falla devuelve la
// entrada en minúsculas.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Contains indica si s contiene substr comparando en forma normalizada.
func Contains(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}
