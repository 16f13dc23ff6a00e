package patterns

import "github.com/dlclark/regexp2"

const doiTail = `[^\s\)\],;]+`

// DOI holds the DOI and DOI-URL token matchers. Group 1 is the identifier,
// group 2 (where present) the token that followed it across a line wrap.
type DOI struct {
	ID           Matcher // bare 10.NNNN/suffix
	HTTP         Matcher // https://doi.org/<id>
	HTTPTail     Matcher
	HTTPFull     Matcher
	Bare         Matcher // doi.org/<id> without scheme
	BareTail     Matcher
	Colon        Matcher // doi: <id> [<tail>]
	BrokenTwo    Matcher // 10.NNNN/part- part
	Split        Matcher // any DOI or DOI URL token, for splitting fragments
	Valid        Matcher
	StrayPrefix  Matcher // doi.org/ not followed by an identifier
	StartsLikeID Matcher
}

func buildDOI(b *builder) *DOI {
	return &DOI{
		ID:           b.std("doi_id", `\b10\.\d{4,9}/`+doiTail),
		HTTP:         b.std("doi_http", `(?i)https?://(?:dx\.)?doi\.org/(`+doiTail+`)`),
		HTTPTail:     b.std("doi_http_tail", `(?i)https?://(?:dx\.)?doi\.org/(`+doiTail+`)\s+(`+doiTail+`)`),
		HTTPFull:     b.std("doi_http_full", `(?i)https?://(?:dx\.)?doi\.org/[^\s\)\],;:]+`),
		Bare:         b.std("doi_bare", `(?i)\b(?:doi\.org/|dx\.doi\.org/)(`+doiTail+`)`),
		BareTail:     b.std("doi_bare_tail", `(?i)\b(?:doi\.org/|dx\.doi\.org/)(`+doiTail+`)\s+(`+doiTail+`)`),
		Colon:        b.std("doi_colon", `(?i)\bdoi:\s*\[?\s*(`+doiTail+`)(?:\s+(`+doiTail+`))?\s*\]?`),
		BrokenTwo:    b.std("doi_broken_two", `\b(10\.\d{4,9}/`+doiTail+`)\s+(`+doiTail+`)`),
		Split:        b.std("doi_split", `(?i)(https?://(?:dx\.)?doi\.org/\S+|dx\.doi\.org/\S+|doi\.org/\S+|doi:\S+)`),
		Valid:        b.std("doi_valid", `^10\.\d{2,9}/[^\s\)\]\.,;]+`),
		StrayPrefix:  b.backtrack("doi_stray_prefix", `(?i)\b(?:https?://)?(?:dx\.)?doi\.org/\s*(?!\s*10\.)`, regexp2.None),
		StartsLikeID: b.std("doi_starts_like", `(?i)^[\s\[]*(?:https?://(?:dx\.)?doi\.org/|dx\.doi\.org/|doi\.org/|doi:|10\.)`),
	}
}
