package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ResolveImage picks the picture for a bouquet in the given colour: an explicit
// colour mapping, then a guess under ImageBase, then the default, then the
// legacy image. It returns "" when nothing is known.
func ResolveImage(p Product, color string) string {
	selected := strings.TrimSpace(color)
	if selected != "" {
		if img := p.ColorImages[selected]; img != "" {
			return img
		}
		if p.ImageBase != "" {
			if slug := SlugifyColor(selected); slug != "" {
				return strings.TrimRight(p.ImageBase, "/") + "/" + slug + ".svg"
			}
		}
	}
	if p.DefaultImage != "" {
		return p.DefaultImage
	}
	return p.Image
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SlugifyColor turns a display colour into a file name: "Valentine’s Red" becomes
// "valentines-red".
func SlugifyColor(value string) string {
	folded, _, err := transform.String(foldMarks, strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(value))
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r == '\'' || r == '’':
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
