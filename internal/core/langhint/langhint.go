// Package langhint provides cheap script-based language detection.
// It is a fallback for requests that arrive without a language hint;
// a caller-supplied hint always wins upstream.
package langhint

import (
	"unicode"
)

// Detect returns a best-effort BCP-47 language code and a confidence in
// [0,1]. Confidence is the share of letters belonging to the winning
// script. Ambiguous scripts (Cyrillic, Devanagari, bare Latin below the
// letter floor) return "" with confidence 0 rather than a guess
func Detect(s string) (code string, confidence float64) {
	const minLetters = 4

	var (
		latin, cyrillic, greek, han, hira, kata, hangul int
		arabic, hebrew, thai                            int
		totalLetters                                    int
	)

	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		totalLetters++

		switch {
		case unicode.In(r, unicode.Hangul):
			hangul++
		case unicode.In(r, unicode.Hiragana):
			hira++
		case unicode.In(r, unicode.Katakana):
			kata++
		case unicode.In(r, unicode.Han):
			han++
		case unicode.In(r, unicode.Arabic):
			arabic++
		case unicode.In(r, unicode.Hebrew):
			hebrew++
		case unicode.In(r, unicode.Thai):
			thai++
		case unicode.In(r, unicode.Greek):
			greek++
		case unicode.In(r, unicode.Cyrillic):
			cyrillic++
		default:
			if unicode.In(r, unicode.Latin) {
				latin++
			}
		}
	}

	if totalLetters < minLetters {
		return "", 0
	}
	conf := func(n int) float64 { return float64(n) / float64(totalLetters) }

	switch {
	// kana is decisive for Japanese even when Han dominates the count
	case hira > 0 || kata > 0:
		return "ja", conf(hira + kata + han)
	case hangul > 0:
		return "ko", conf(hangul)
	// Han without kana reads as Chinese
	case han > 0:
		return "zh", conf(han)
	case arabic > 0:
		return "ar", conf(arabic)
	case hebrew > 0:
		return "he", conf(hebrew)
	case thai > 0:
		return "th", conf(thai)
	case greek > 0:
		return "el", conf(greek)
	// Cyrillic covers ru/uk/bg/sr and more; not worth a guess
	case cyrillic > 0:
		return "", 0
	case latin > 0:
		// Latin-script languages are indistinguishable by script alone;
		// report English the way the original heuristic did, weakly
		return "en", conf(latin) * 0.5
	}
	return "", 0
}
