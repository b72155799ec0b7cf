// Package lexicon loads and compiles the embedded valence lexicon.
// It prepares per-language term tables for the scorer
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed lexicon.json
var embedded []byte

type rawLanguage struct {
	Match        string             `json:"match"`
	Terms        map[string]float64 `json:"terms"`
	Negators     []string           `json:"negators"`
	Intensifiers map[string]float64 `json:"intensifiers"`
}

type rawPack struct {
	Version   int                    `json:"version"`
	Meta      map[string]any         `json:"meta"`
	Languages map[string]rawLanguage `json:"languages"`
}

// MatchMode selects how a language's terms are located in text
type MatchMode int

const (
	// MatchToken looks terms up by whitespace-delimited token
	MatchToken MatchMode = iota
	// MatchSubstring scans for term occurrences, longest first; used for
	// languages written without word separators
	MatchSubstring
)

// Language is the compiled term table for one language
type Language struct {
	Code         string
	Match        MatchMode
	Terms        map[string]float64
	Negators     map[string]struct{}
	Intensifiers map[string]float64

	// TermsByLength is Terms' keys sorted longest first, only populated
	// for MatchSubstring so greedy matching consumes composites before
	// their parts
	TermsByLength []string
}

// Pack is the compiled lexicon
type Pack struct {
	Version   int
	Meta      map[string]any
	Languages map[string]*Language
}

// Load returns the compiled pack from the embedded lexicon.json
func Load() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("lexicon: parse lexicon.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("lexicon: unsupported lexicon.json version %d (want 1)", rp.Version)
	}

	p := &Pack{
		Version:   rp.Version,
		Meta:      rp.Meta,
		Languages: make(map[string]*Language, len(rp.Languages)),
	}
	for code, rl := range rp.Languages {
		lang := &Language{
			Code:         code,
			Terms:        make(map[string]float64, len(rl.Terms)),
			Negators:     make(map[string]struct{}, len(rl.Negators)),
			Intensifiers: make(map[string]float64, len(rl.Intensifiers)),
		}
		switch rl.Match {
		case "", "token":
			lang.Match = MatchToken
		case "substring":
			lang.Match = MatchSubstring
		default:
			return nil, fmt.Errorf("lexicon: %s: unknown match mode %q", code, rl.Match)
		}
		for term, v := range rl.Terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if v < -1 || v > 1 {
				return nil, fmt.Errorf("lexicon: %s: term %q valence %v out of [-1,1]", code, term, v)
			}
			lang.Terms[term] = v
		}
		for _, n := range rl.Negators {
			n = strings.ToLower(strings.TrimSpace(n))
			if n != "" {
				lang.Negators[n] = struct{}{}
			}
		}
		for w, m := range rl.Intensifiers {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" && m > 0 {
				lang.Intensifiers[w] = m
			}
		}
		if lang.Match == MatchSubstring {
			lang.TermsByLength = make([]string, 0, len(lang.Terms))
			for term := range lang.Terms {
				lang.TermsByLength = append(lang.TermsByLength, term)
			}
			sort.Slice(lang.TermsByLength, func(i, j int) bool {
				a, b := lang.TermsByLength[i], lang.TermsByLength[j]
				if len(a) != len(b) {
					return len(a) > len(b)
				}
				return a < b
			})
		}
		p.Languages[code] = lang
	}
	if _, ok := p.Languages["en"]; !ok {
		return nil, fmt.Errorf("lexicon: english table missing")
	}
	return p, nil
}

// MustLoad is Load or panic, for wiring at process start
func MustLoad() *Pack {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// Codes lists the language codes the pack carries, unordered
func (p *Pack) Codes() []string {
	out := make([]string, 0, len(p.Languages))
	for code := range p.Languages {
		out = append(out, code)
	}
	return out
}

// Language returns the table for code, falling back to the base language
// ("pt-BR" -> "pt") and then to English
func (p *Pack) Language(code string) *Language {
	if l, ok := p.Languages[code]; ok {
		return l
	}
	if i := strings.IndexByte(code, '-'); i > 0 {
		if l, ok := p.Languages[code[:i]]; ok {
			return l
		}
	}
	return p.Languages["en"]
}
