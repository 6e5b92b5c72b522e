// Package textutil holds string normalisation helpers.
package textutil

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/rpa-cli/internal/logger"
)

const (
	fullwidthFirst = '\uFF01'
	fullwidthLast  = '\uFF5E'
	fullwidthShift = 0xFEE0
	ideographSpace = '\u3000'
)

// halve maps full-width ASCII variants and the ideographic space. Katakana
// and other wide characters are left alone, unlike width.Narrow.
var halve = runes.Map(func(r rune) rune {
	switch {
	case r >= fullwidthFirst && r <= fullwidthLast:
		return r - fullwidthShift
	case r == ideographSpace:
		return ' '
	}
	return r
})

// HalveZenkakuASCII converts full-width ASCII (U+FF01..U+FF5E) to its
// half-width form and U+3000 to a space.
func HalveZenkakuASCII(s string) string {
	logger.Debug("String.halveZenkakuAscii %s", s)
	out, _, err := transform.String(halve, s)
	if err != nil {
		return s
	}
	return out
}
