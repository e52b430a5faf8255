// Package textnorm converts the HTML-escaped comment text returned by the
// YouTube API into plain text.
package textnorm

import "strings"

// replacer is built once. Pairs are matched in order at each position and
// replaced output is never re-scanned.
var replacer = strings.NewReplacer(
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x2F;", "/",
	"&amp;", "&",
	"<br>", "\n",
	"\u2014", "-",
)

// Normalize unescapes the fixed set of entities and markup the API emits in
// textDisplay. It is not a general HTML unescaper.
func Normalize(text string) string {
	return replacer.Replace(text)
}
