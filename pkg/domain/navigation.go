package domain

// NavEntry is one item of the navigation schema.
// Entries sharing a SubstepOf are contiguous; only the first of a group is Primary.
type NavEntry struct {
	Title     string `json:"title"`
	Key       string `json:"step_key"`
	Index     int    `json:"index"`
	Primary   bool   `json:"primary"`
	SubstepOf string `json:"substep_of,omitempty"`
}

// GroupSize counts the schema entries that belong to the same group as e.
// Ungrouped entries have a group size of zero.
func GroupSize(schema []NavEntry, e NavEntry) int {
	if e.SubstepOf == "" {
		return 0
	}
	n := 0
	for _, other := range schema {
		if other.SubstepOf == e.SubstepOf {
			n++
		}
	}
	return n
}
