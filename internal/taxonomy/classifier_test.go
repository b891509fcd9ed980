package taxonomy

import "testing"

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Keywords: []string{"alpha"}, Path: Path{Domain: "First"}},
		{Keywords: []string{"alpha", "beta"}, Path: Path{Domain: "Second"}},
	}
	c := New(rules, Path{Domain: "Fallback"})

	if got := c.Classify("we need alpha support"); got.Domain != "First" {
		t.Errorf("Classify matched %q, want First", got.Domain)
	}
	if got := c.Classify("beta only"); got.Domain != "Second" {
		t.Errorf("Classify matched %q, want Second", got.Domain)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(DefaultRules(), DefaultFallback())

	signal := "Looking for a website and maybe some AI help"
	first := c.Classify(signal)
	for i := 0; i < 10; i++ {
		if got := c.Classify(signal); got != first {
			t.Fatalf("Classify not deterministic: got %+v, want %+v", got, first)
		}
	}
}

func TestClassifyDefaultPath(t *testing.T) {
	c := New(DefaultRules(), DefaultFallback())

	cases := []struct {
		name   string
		signal string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"no match", "hello, I found you via a friend"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.signal)
			if got != DefaultFallback() {
				t.Errorf("Classify(%q) = %+v, want default path", tc.signal, got)
			}
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := New(DefaultRules(), DefaultFallback())

	upper := c.Classify("NEED A WEBSITE")
	lower := c.Classify("need a website")
	if upper != lower {
		t.Errorf("case sensitivity leak: %+v vs %+v", upper, lower)
	}
	if upper.Domain != "Web & App Development" {
		t.Errorf("Classify routed to %q, want Web & App Development", upper.Domain)
	}
}

func TestClassifyKeywordRouting(t *testing.T) {
	c := New(DefaultRules(), DefaultFallback())

	cases := []struct {
		signal string
		domain string
	}{
		{"interested in machine learning", "AI Services"},
		{"mobile app quote", "Web & App Development"},
		{"need staffing for Q4", "Talent Solutions"},
		{"digital transformation audit", "Business Consulting"},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.signal); got.Domain != tc.domain {
			t.Errorf("Classify(%q).Domain = %q, want %q", tc.signal, got.Domain, tc.domain)
		}
	}
}
