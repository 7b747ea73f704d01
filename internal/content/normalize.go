// ABOUTME: Content normalization: fingerprints, HTML stripping, Unicode spaces, preview truncation
// ABOUTME: Fingerprints are MD5 over NFC bytes so they match the acquisition layer's ids

package content

import (
	"crypto/md5"
	"encoding/hex"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// PreviewLength is the classifier's preview bound, in grapheme clusters.
const PreviewLength = 100

// htmlTag matches markup that clipboard HTML captures typically carry.
// Generic type syntax such as List<String> must not match.
var htmlTag = regexp.MustCompile(`(?i)</?(?:html|head|body|div|span|p|br|a|b|i|u|strong|em|ul|ol|li|table|thead|tbody|tr|td|th|h[1-6]|pre|code|blockquote|img|meta|style|font)\b[^>]*>`)

var stripPolicy = bluemonday.StrictPolicy()

// Fingerprint returns the stable content id: MD5 hex over the NFC form.
func Fingerprint(text string) string {
	sum := md5.Sum(norm.NFC.Bytes([]byte(text)))
	return hex.EncodeToString(sum[:])
}

// Normalize prepares captured text for classification: HTML markup is
// stripped, exotic Unicode spaces become ASCII spaces, and the result is NFC.
func Normalize(text string) string {
	if htmlTag.MatchString(text) {
		text = html.UnescapeString(stripPolicy.Sanitize(text))
	}
	return norm.NFC.String(NormalizeSpaces(text))
}

// NormalizeSpaces replaces Unicode space characters with ASCII space (U+0020).
func NormalizeSpaces(s string) string {
	if !strings.ContainsFunc(s, isUnicodeSpace) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isUnicodeSpace(r) {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isUnicodeSpace(r rune) bool {
	switch {
	case r == '\u00A0': // no-break space
		return true
	case r >= '\u2000' && r <= '\u200A':
		return true
	case r == '\u202F', r == '\u205F', r == '\u3000':
		return true
	}
	return false
}

// Truncate shortens s to at most n grapheme clusters, appending "..." when
// anything was cut. Combining sequences and emoji are never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		if count == n {
			from, _ := g.Positions()
			return s[:from] + "..."
		}
		count++
	}
	return s
}

// Clip shortens s to at most n grapheme clusters without a marker.
func Clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		if count == n {
			from, _ := g.Positions()
			return s[:from]
		}
		count++
	}
	return s
}
