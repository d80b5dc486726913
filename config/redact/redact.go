// Package redact masks sensitive values for display. Masking is strictly a
// presentation concern: masked strings are produced at render time and are
// never written back to a document.
package redact

import "strings"

// sensitiveFragments are tested as substrings of the normalized key.
var sensitiveFragments = []string{
	"CLIENT_ID",
	"CLIENT_SECRET",
	"API_KEY",
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE_KEY",
	"ACCESS_KEY",
	"REFRESH_TOKEN",
}

const (
	revealEdge = 3 // plaintext kept at each end of a long value
	minRun     = 4 // asterisk run never shrinks below this
	minLong    = 8 // values shorter than this are masked with no plaintext
)

// Sensitive reports whether key names a value that must not be displayed in
// full. The key is upper-cased and runs of '_', '-' and '.' are collapsed to
// single underscores before the fragment test, so "github-api-key",
// "GITHUB.API.KEY" and "GITHUB_API_KEY" all match.
func Sensitive(key string) bool {
	norm := normalizeKey(key)
	for _, frag := range sensitiveFragments {
		if strings.Contains(norm, frag) {
			return true
		}
	}
	return false
}

func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	pendingSep := false
	for _, r := range strings.ToUpper(key) {
		if r == '_' || r == '-' || r == '.' {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// Mask returns a display-safe rendering of value when key is sensitive.
// Values under non-sensitive keys pass through unchanged, byte for byte.
func Mask(key, value string) string {
	if !Sensitive(key) {
		return value
	}
	return MaskValue(value)
}

// MaskValue masks unconditionally. Short values (< 8 runes) become a fixed
// asterisk run exposing no plaintext; longer values keep their first and
// last three runes with the middle replaced by at least four asterisks.
func MaskValue(value string) string {
	r := []rune(value)
	if len(r) < minLong {
		return strings.Repeat("*", minRun)
	}
	run := len(r) - 2*revealEdge
	if run < minRun {
		run = minRun
	}
	return string(r[:revealEdge]) + strings.Repeat("*", run) + string(r[len(r)-revealEdge:])
}

// MaskEnv returns a copy of env with sensitive values masked. The input map
// is never modified. A nil map stays nil.
func MaskEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = Mask(k, v)
	}
	return out
}
