// Package normalize provides the deterministic text normalizer run ahead of
// scoring. Same input, same options, same output, always; cache keys depend
// on it.
//
// Pipeline order
// 1 Sanitize and repair UTF-8 drop invalid bytes and control chars
// 2 Unicode NFKC normalization
// 3 Strip URLs and @mentions unwrap #hashtags keep the word
// 4 Case folding
// 5 Remove zero-width and combining marks
// 6 Width fold fullwidth to ASCII
// 7 Optional emoji strip
// 8 Collapse whitespace to single spaces and trim
package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"vibecheck/internal/platform/config"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Options tunes the pipeline; the zero value is what scoring wants
type Options struct {
	// KeepMentions leaves @mentions in place instead of stripping them
	KeepMentions bool
	// KeepCase skips case folding
	KeepCase bool
	// StripEmoji drops pictographs instead of passing them through
	StripEmoji bool
}

// Normalizer is concurrency safe when used with the pools below
type Normalizer struct {
	opt Options
}

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`@\w+`)
	hashtagRe = regexp.MustCompile(`#(\w+)`)
)

// pools of fresh transformer chains, one per fold setting
var foldPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

var keepCasePool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// New constructs a Normalizer
func New(opt Options) *Normalizer { return &Normalizer{opt: opt} }

// FromConfig builds Options from the environment under the NORMALIZE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("NORMALIZE_")
	return Options{
		KeepMentions: c.MayBool("KEEP_MENTIONS", false),
		KeepCase:     c.MayBool("KEEP_CASE", false),
		StripEmoji:   c.MayBool("STRIP_EMOJI", false),
	}
}

// Normalize returns the normalized form of s following the pipeline above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = Sanitize(s)
	s = strings.ToValidUTF8(s, "")

	// social noise goes before folding so patterns match the raw forms
	s = urlRe.ReplaceAllString(s, " ")
	if !n.opt.KeepMentions {
		s = mentionRe.ReplaceAllString(s, " ")
	}
	s = hashtagRe.ReplaceAllString(s, "$1")

	pool := &foldPool
	if n.opt.KeepCase {
		pool = &keepCasePool
	}
	tr := pool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	pool.Put(tr)

	if n.opt.StripEmoji {
		ns = stripEmoji(ns)
	}

	return collapseSpaces(ns)
}

// stripEmoji drops pictographic runes; textual content stays untouched
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	}
	return false
}

// collapseSpaces converts whitespace runs to a single ASCII space, but preserves line breaks.
// Runs that contain any newline are collapsed to a single newline. Leading/trailing spaces/newlines are trimmed
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	sawNL := false
	flush := func() {
		if !inWS {
			return
		}
		if sawNL {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		inWS = false
		sawNL = false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			if r == '\n' || r == '\r' {
				sawNL = true
			}
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	out := b.String()
	// Trim both spaces and newlines on edges
	out = strings.Trim(out, " \n\t\r")
	return out
}
