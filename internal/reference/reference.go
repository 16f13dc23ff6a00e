// Package reference defines the finalized reference produced by a run.
package reference

// Reference is one bibliographic entry, finalized. It is not modified after
// the emitter builds it.
type Reference struct {
	// Index is the 1-based position in the output list.
	Index int    `json:"index"`
	Text  string `json:"text"`

	// DOIs are the identifiers moved to the end of Text, in order.
	DOIs []string `json:"dois,omitempty"`

	// Number is the list number the entry carried in a numbered list.
	Number int `json:"number,omitempty"`

	// Lines are the ordinals of the extracted lines the entry was built from.
	Lines []int `json:"lines"`

	Source Source `json:"source"`
}

// Source records where a reference was extracted from.
type Source struct {
	Path    string `json:"path"`
	Backend string `json:"backend"` // backendA, backendB or text
	RunID   string `json:"run_id"`
}

// HasDOI reports whether the reference carries at least one DOI.
func (r Reference) HasDOI() bool { return len(r.DOIs) > 0 }
