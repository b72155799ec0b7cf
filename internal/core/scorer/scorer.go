// Package scorer ships the built-in model: a deterministic valence-lexicon
// scorer over the embedded lexicon pack. It exists so the serving core, the
// HTTP surface, and the tests run real sentiment end to end without a model
// server; heavier models implement the same port and drop in behind it.
package scorer

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"vibecheck/internal/core/langhint"
	"vibecheck/internal/core/lexicon"
	"vibecheck/internal/serving"
)

// negation flips valence for this many tokens after a negator
const negationWindow = 3

// damping applied to a flipped valence; "not great" is negative but not
// as negative as "terrible"
const negationDamp = 0.75

// Scorer scores batches against the lexicon pack. Stateless after
// construction, safe for concurrent use
type Scorer struct {
	pack *lexicon.Pack

	// token-mode tables in code order; script detection cannot tell Latin
	// languages apart, so those are resolved by whichever table recognizes
	// the most sentiment mass
	tokenLangs []*lexicon.Language
}

// New constructs a Scorer over pack
func New(pack *lexicon.Pack) *Scorer {
	s := &Scorer{pack: pack}
	codes := make([]string, 0, len(pack.Languages))
	for code, lang := range pack.Languages {
		if lang.Match == lexicon.MatchToken {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		s.tokenLangs = append(s.tokenLangs, pack.Languages[code])
	}
	return s
}

// Score implements the model port: one result per input, input order,
// or a whole-batch error. The only failure mode here is ctx expiry
func (s *Scorer) Score(ctx context.Context, texts []string) ([]serving.Result, error) {
	out := make([]serving.Result, len(texts))
	now := time.Now().UTC()
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.scoreOne(text, now)
	}
	return out, nil
}

func (s *Scorer) scoreOne(text string, now time.Time) serving.Result {
	code, _ := langhint.Detect(text)

	// a decisive non-Latin script pins the table
	if code != "" && code != "en" {
		lang := s.pack.Language(code)
		if lang.Match == lexicon.MatchSubstring {
			pos, neg := scoreSubstring(lang, text)
			// no token boundaries; approximate unit count from rune length
			units := utf8.RuneCountInString(text) / 2
			if units < 1 {
				units = 1
			}
			return build(pos, neg, units, now)
		}
		pos, neg, units := scoreTokens(lang, text)
		if units < 1 {
			units = 1
		}
		return build(pos, neg, units, now)
	}

	// Latin or unrecognized script: the table that recognizes the most
	// sentiment mass wins, first in code order on ties
	var pos, neg float64
	units := 1
	for _, lang := range s.tokenLangs {
		p, n, u := scoreTokens(lang, text)
		if u > units {
			units = u
		}
		if p+n > pos+neg {
			pos, neg = p, n
		}
	}
	return build(pos, neg, units, now)
}

// scoreTokens walks whitespace-delimited tokens tracking negation and
// intensity state between them
func scoreTokens(lang *lexicon.Language, text string) (pos, neg float64, units int) {
	toks := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	mult := 1.0
	negated := 0
	for _, tok := range toks {
		units++
		if _, ok := lang.Negators[tok]; ok {
			negated = negationWindow
			continue
		}
		if m, ok := lang.Intensifiers[tok]; ok {
			mult *= m
			continue
		}
		if v, ok := lang.Terms[tok]; ok {
			v *= mult
			if negated > 0 {
				v = -v * negationDamp
			}
			v = clamp(v)
			if v > 0 {
				pos += v
			} else {
				neg += -v
			}
		}
		mult = 1.0
		if negated > 0 {
			negated--
		}
	}
	return pos, neg, units
}

// scoreSubstring counts term occurrences longest first and consumes each
// match so composites ("不好") are not re-counted through their parts ("好").
// Negation is expressed through composite entries in the pack, not here
func scoreSubstring(lang *lexicon.Language, text string) (pos, neg float64) {
	rest := text
	for _, term := range lang.TermsByLength {
		c := strings.Count(rest, term)
		if c == 0 {
			continue
		}
		v := lang.Terms[term]
		if v > 0 {
			pos += v * float64(c)
		} else {
			neg += -v * float64(c)
		}
		rest = strings.ReplaceAll(rest, term, " ")
	}
	return pos, neg
}

// build folds accumulated valence into the three-way score distribution.
// Neutral mass grows with the share of the text carrying no sentiment
func build(pos, neg float64, units int, now time.Time) serving.Result {
	total := pos + neg
	scores := map[serving.Label]float64{
		serving.LabelNegative: 0,
		serving.LabelNeutral:  1,
		serving.LabelPositive: 0,
	}
	if total > 0 {
		intensity := total / float64(units)
		if intensity > 1 {
			intensity = 1
		}
		neu := (1 - intensity) * total
		sum := pos + neg + neu
		scores[serving.LabelNegative] = neg / sum
		scores[serving.LabelNeutral] = neu / sum
		scores[serving.LabelPositive] = pos / sum
	}

	label := serving.LabelNeutral
	switch {
	case scores[serving.LabelPositive] > scores[serving.LabelNeutral] &&
		scores[serving.LabelPositive] > scores[serving.LabelNegative]:
		label = serving.LabelPositive
	case scores[serving.LabelNegative] > scores[serving.LabelNeutral] &&
		scores[serving.LabelNegative] >= scores[serving.LabelPositive]:
		label = serving.LabelNegative
	}
	return serving.Result{
		Label:      label,
		Confidence: scores[label],
		Scores:     scores,
		ComputedAt: now,
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
