package domain

import "time"

// Project pairs a bitext with the catalog subset enabled for it and tracks
// review progress. SourceWordCount and TargetWordCount are set once, when a
// bitext file is ingested, and never mutated by later issue activity.
type Project struct {
	ID                 string
	Name               string
	Finished           bool
	LastSegment        int
	BitextFile         string
	MetricFile         string
	SpecificationsFile string
	Specifications     string
	SourceWordCount    int
	TargetWordCount    int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayID returns a short identifier for listings.
func (p *Project) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
