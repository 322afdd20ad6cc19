package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// entities undoes one level of the escaping the policy applies to text it
// keeps. Replacer works in a single pass, so "&amp;lt;" yields "&lt;"
// rather than "<".
var entities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
)

// Text strips all markup from free-text input before it is stored. The
// policy entity-escapes bare ampersands and angle brackets, so its output
// is unescaped one level and re-sanitized until stable; entity-encoded
// markup is stripped on the next pass, never reconstituted.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for i := 0; i < 4; i++ {
		next := entities.Replace(policy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
