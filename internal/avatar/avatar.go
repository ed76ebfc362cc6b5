// Package avatar renders initials-based avatar images for new accounts.
package avatar

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// ContentType of rendered avatars.
const ContentType = "image/svg+xml"

const size = 256

// palette holds the background colors avatars are drawn with. The color for
// a given name is stable across renders.
var palette = []string{
	"#1D4ED8", "#9333EA", "#DB2777", "#DC2626",
	"#D97706", "#059669", "#0891B2", "#4F46E5",
}

// Initials extracts up to two uppercase initials from a display name.
// An empty or unusable name falls back to "?".
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				initials = append(initials, unicode.ToUpper(r))
			}
			break
		}
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

// Render produces an SVG avatar with the name's initials on a colored
// background.
func Render(name string) []byte {
	initials := Initials(name)
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="%s"/>`+
			`<text x="50%%" y="50%%" dy="0.35em" text-anchor="middle" `+
			`font-family="Helvetica, Arial, sans-serif" font-size="%d" fill="#FFFFFF">%s</text>`+
			`</svg>`,
		size, size, size, size, backgroundFor(name), size*2/5, initials,
	)
	return []byte(svg)
}

func backgroundFor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return palette[h.Sum32()%uint32(len(palette))]
}
