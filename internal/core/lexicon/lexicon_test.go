package lexicon

import "testing"

func TestLoadAndCompile(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("version %d", p.Version)
	}
	en, ok := p.Languages["en"]
	if !ok {
		t.Fatalf("english table missing")
	}
	if en.Match != MatchToken {
		t.Fatalf("english should be token matched")
	}
	if v, ok := en.Terms["great"]; !ok || v <= 0 {
		t.Fatalf("'great' missing or non-positive: %v", v)
	}
	if v, ok := en.Terms["terrible"]; !ok || v >= 0 {
		t.Fatalf("'terrible' missing or non-negative: %v", v)
	}
	if _, ok := en.Negators["not"]; !ok {
		t.Fatalf("negator 'not' missing")
	}
	if m, ok := en.Intensifiers["very"]; !ok || m <= 1 {
		t.Fatalf("'very' should amplify: %v", m)
	}
}

func TestSubstringTablesSortedLongestFirst(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	for _, code := range []string{"ja", "zh"} {
		lang := p.Languages[code]
		if lang == nil || lang.Match != MatchSubstring {
			t.Fatalf("%s: expected substring table", code)
		}
		if len(lang.TermsByLength) != len(lang.Terms) {
			t.Fatalf("%s: sorted terms incomplete", code)
		}
		for i := 1; i < len(lang.TermsByLength); i++ {
			if len(lang.TermsByLength[i]) > len(lang.TermsByLength[i-1]) {
				t.Fatalf("%s: terms not longest-first at %d", code, i)
			}
		}
	}
}

func TestLanguageFallback(t *testing.T) {
	p := MustLoad()
	if got := p.Language("pt-BR"); got.Code != "pt" {
		t.Fatalf("pt-BR resolved to %q", got.Code)
	}
	if got := p.Language("xx"); got.Code != "en" {
		t.Fatalf("unknown lang resolved to %q, want en fallback", got.Code)
	}
	if got := p.Language("ja"); got.Code != "ja" {
		t.Fatalf("ja resolved to %q", got.Code)
	}
}
