package domain

// ReportVector counts the reported occurrences of one issue type, split by
// side and severity, with subtotals. Indices follow the fixed layout below.
type ReportVector [11]int

// ReportVector index layout.
const (
	VecSourceNeutral = iota
	VecSourceMinor
	VecSourceMajor
	VecSourceCritical
	VecSourceTotal
	VecTargetNeutral
	VecTargetMinor
	VecTargetMajor
	VecTargetCritical
	VecTargetTotal
	VecGrandTotal
)

// Report maps a catalog issue id to its occurrence vector. Derived and never
// persisted; recomputed on every read.
type Report map[string]ReportVector

// Add records one occurrence of the given side and severity, maintaining the
// side subtotals and the grand total.
func (v *ReportVector) Add(side Side, level Severity) {
	var base int
	switch side {
	case SideSource:
		base = VecSourceNeutral
	case SideTarget:
		base = VecTargetNeutral
	default:
		return
	}

	var offset int
	switch level {
	case SeverityNeutral:
		offset = 0
	case SeverityMinor:
		offset = 1
	case SeverityMajor:
		offset = 2
	case SeverityCritical:
		offset = 3
	default:
		return
	}

	v[base+offset]++
	v[base+4]++
	v[VecGrandTotal]++
}
