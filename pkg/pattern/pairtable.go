package pattern

// PairTable represents per-pattern results for one directional port pair
// (or any grouped case listing, such as the failure list).
type PairTable struct {
	Label   string
	Results []CaseItem
}

// CaseItem is a single pattern result row.
type CaseItem struct {
	Name     string // formatted pattern, e.g. "0xAA"
	Status   string // "pass", "fail"
	Expected string // formatted expected value
	Actual   string // formatted read value; empty when the driver faulted
	Details  string // fault text or extra info
}

func (t *PairTable) Type() PatternType { return PatternTypePairTable }
