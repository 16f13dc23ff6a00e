package segment

import (
	"testing"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/patterns"
)

func ruleInput(t *testing.T, cfg config.Style, prev, line string) Input {
	t.Helper()
	return Input{
		Prev:    prev,
		HasPrev: prev != "",
		Line:    line,
		P:       patterns.New(cfg),
		Cfg:     &cfg,
	}
}

func TestRules(t *testing.T) {
	apa := config.Default()
	bare, _ := config.Default().FromRefType("B")

	tests := []struct {
		name string
		rule Rule
		cfg  config.Style
		prev string
		line string
		want Decision
	}{
		{"government starts", GovernmentMarker, apa, "Smith, J., &", "SOU 2020:11 Om något.", Start},
		{"government abstains", GovernmentMarker, apa, "Smith, J., &", "Doe, A. (2020).", Abstain},
		{"leading paren year", LeadingYear, apa, "Smith, J.", "(2020). Title.", Continue},
		{"leading bare year", LeadingYear, apa, "Smith, J.", "2020, 5(3), 1-10.", Continue},
		{"leading no year", LeadingYear, apa, "Smith, J.", "Title 2020", Abstain},
		{"leading no prev", LeadingYear, apa, "", "(2020). Title.", Abstain},
		{"trailing year", TrailingYear, apa, "Lund, P. (2018)", "Title on next line.", Continue},
		{"trailing mid year", TrailingYear, apa, "Lund, P. (2018). Title", "More.", Abstain},
		{"singleton digits", Singleton, apa, "Title. https://doi.org/", "10.1234/abc", Continue},
		{"singleton bracket", Singleton, apa, "Title", "[Online]", Continue},
		{"singleton word", Singleton, apa, "Title", "Word", Abstain},
		{"wrapped initials", WrappedInitials, apa, "Smith, J., Doe,", "A. B. (2020). Title.", Continue},
		{"wrapped initials no comma", WrappedInitials, apa, "Smith, J. Title", "A. B. (2020). Title.", Abstain},
		{"wrapped initials bare year", WrappedInitials, bare, "Smith, J., Doe,", "A. 2020. Title.", Continue},
		{"conjunction", Conjunction, apa, "Smith, J., &", "Doe, A. (2020).", Continue},
		{"conjunction och", Conjunction, apa, "Berg, K. och", "Lund, P. (2020).", Continue},
		{"conjunction none", Conjunction, apa, "Smith, J.", "Doe, A. (2020).", Abstain},
		{"ampersand start", AmpersandStart, apa, "Smith, J., Doe, A.,", "& Berg, K. (2020).", Continue},
		{"editor only", EditorOnly, apa, "Smith, J. (2020). Chapter. In A. Berg",
			"(Eds.), Handbook of things (pp. 1-10). Publisher.", Continue},
		{"editor only with year", EditorOnly, apa, "In A. Berg", "(Eds.) (2020).", Abstain},
		{"editor trailing", EditorTrailing, apa, "In A. Berg (Ed.).", "Handbook. Publisher.", Continue},
		{"editor trailing author", EditorTrailing, apa, "In A. Berg (Ed.).", "Berg, K., & Lund, P. Title", Start},
		{"editor trailing text after", EditorTrailing, apa, "In A. Berg (Ed.), Handbook", "More.", Abstain},
		{"author head", AuthorHead, apa, "Andersson, K. & Berg, L.", "Title of the work", Continue},
		{"author head with digits", AuthorHead, apa, "Andersson, K. 3", "Title", Abstain},
		{"author head comma list", AuthorHead, apa, "Some names, listed here,", "Title", Continue},
		{"default join", DefaultJoin, apa, "Smith, J. (2020). Title", "continues here.", Continue},
		{"default join year", DefaultJoin, apa, "Smith, J. (2020). Title", "Doe, A. (2019). Other.", Abstain},
		{"default join author start", DefaultJoin, bare, "Smith, J. 2020. Title", "Berg, K. Title without year", Start},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.rule.Apply(ruleInput(t, tt.cfg, tt.prev, tt.line))
			if v.Decision != tt.want {
				t.Errorf("%s(%q, %q) = %v, want %v", tt.rule.Name, tt.prev, tt.line, v.Decision, tt.want)
			}
			if v.Unavailable {
				t.Errorf("%s reported unavailable", tt.rule.Name)
			}
		})
	}
}

func TestNumberedLineRule(t *testing.T) {
	cfg := config.Default()
	in := ruleInput(t, cfg, "[4] Smith, J. Title.", "")
	in.PrevNumber = 4
	in.Numbering = patterns.BracketNumbering

	tests := []struct {
		line   string
		want   Decision
		drop   bool
		number int
	}{
		{"[5]", Continue, true, 5},
		{"[7]", Continue, false, 0},
		{"[5] Doe, A. Title.", Start, false, 5},
		{"continued text", Continue, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			in.Line = tt.line
			v := NumberedLine.Apply(in)
			if v.Decision != tt.want || v.Drop != tt.drop || v.Number != tt.number {
				t.Errorf("NumberedLine(%q) = %+v, want %v drop=%v number=%d",
					tt.line, v, tt.want, tt.drop, tt.number)
			}
		})
	}
}

func TestSplitRules(t *testing.T) {
	cfg := config.Default()
	line := "Smith, J. (2019). Thesis [Doctoral dissertation, Lunds universitet]. Freake, H. (2020). Next title."
	v := TrailerSplit.Apply(ruleInput(t, cfg, "", line))
	if v.Decision != SplitAt {
		t.Fatalf("TrailerSplit() = %v, want split", v.Decision)
	}
	if got := line[v.At:]; got != "Freake, H. (2020). Next title." {
		t.Errorf("split right side = %q", got)
	}

	single := "Smith, J. (2019). Thesis [Lunds universitet]. Freake, H. Next title."
	if v := TrailerSplit.Apply(ruleInput(t, cfg, "", single)); v.Decision != Abstain {
		t.Errorf("TrailerSplit() with one year = %v, want abstain", v.Decision)
	}

	accessed := "Smith, J. Web page. 2019. [accessed on 2020-01-02] Doe, A. Other page. 2018."
	v = AccessedSplit.Apply(ruleInput(t, cfg, "", accessed))
	if v.Decision != SplitAt || accessed[v.At:] != "Doe, A. Other page. 2018." {
		t.Errorf("AccessedSplit() = %+v", v)
	}
}
