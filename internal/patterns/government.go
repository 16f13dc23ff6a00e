package patterns

// Government-report years run 1900..2030.
const govYear = `(?:19\d{2}|20(?:0\d|1\d|2\d|30))`

// Government matches Swedish government-publication citation prefixes:
// propositions, SOU reports, SFS statutes and departmental Ds series.
type Government struct {
	Prop Matcher
	SOU  Matcher
	SFS  Matcher
	Ds   Matcher
}

func buildGovernment(b *builder) *Government {
	return &Government{
		Prop: b.std("gov_prop", `(?i)^\s*(?:Prop\.|Proposition)\s*\(?`+govYear+`/\d{2}:\d{1,3}\)?`),
		SOU:  b.std("gov_sou", `(?i)^\s*SOU[:\s]+\(?`+govYear+`:\d{1,3}\)?`),
		SFS:  b.std("gov_sfs", `(?i)^\s*SFS[:\s]+\(?`+govYear+`:\d{1,4}\)?`),
		Ds:   b.std("gov_ds", `(?i)^\s*Ds[:\s]+\(?`+govYear+`:\d{1,3}\)?`),
	}
}

// Marker reports whether line opens with any government-report marker.
func (g *Government) Marker(line string) Outcome {
	return Any(g.Prop.Match(line), g.SOU.Match(line), g.SFS.Match(line), g.Ds.Match(line))
}
