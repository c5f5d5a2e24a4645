// Package avatars renders placeholder profile images from a user's initials.
package avatars

import (
	"fmt"
	"hash/fnv"
	"html"
	"net/url"
	"strings"
	"unicode"
)

// ContentType is the media type of rendered avatars.
const ContentType = "image/svg+xml"

var palette = []string{
	"#e11d48", "#db2777", "#c026d3", "#9333ea",
	"#7c3aed", "#4f46e5", "#2563eb", "#0284c7",
	"#0891b2", "#0d9488", "#059669", "#16a34a",
	"#65a30d", "#ca8a04", "#d97706", "#ea580c",
}

// Initials returns up to two upper-case initials from the words of name.
// A name with no letters or digits yields "?".
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for word := range strings.FieldsSeq(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				n++
				break
			}
		}
		if n == 2 {
			break
		}
	}

	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// Color returns the background colour for name. The same name always
// yields the same colour.
func Color(name string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return palette[h.Sum32()%uint32(len(palette))]
}

// SVG renders a square avatar of the given pixel size.
func SVG(name string, size int) []byte {
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[1]d" viewBox="0 0 100 100">`+
			`<rect width="100" height="100" fill="%[2]s"/>`+
			`<text x="50" y="50" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="40" fill="#ffffff">%[3]s</text>`+
			`</svg>`,
		size, Color(name), html.EscapeString(Initials(name)),
	)
	return []byte(svg)
}

// URL returns the address of the avatar for name served under base.
func URL(base, name string) string {
	return strings.TrimRight(base, "/") + "/initials?" + url.Values{"name": {name}}.Encode()
}
