// Package parser implements the file collaborators of the review core: the
// two-column bitext reader and the metric/specifications XML readers. The
// core consumes only their typed outputs; upload transport and storage of
// the raw files belong elsewhere.
package parser

import (
	"fmt"
	"strings"

	"github.com/calinbraic/lqa/internal/domain"
)

// Bitext is the typed result of parsing a bi-column bitext file.
type Bitext struct {
	Segments        []*domain.Segment
	SourceWordCount int
	TargetWordCount int
}

// ParseBitext parses a tab-separated two-column bitext into aligned segments
// and total word counts. One line per segment: source text, a tab, target
// text. Blank lines are skipped; word counts are whitespace-delimited totals
// per column across all lines.
func ParseBitext(raw string) (*Bitext, error) {
	var bt Bitext

	seq := 1
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != 2 {
			return nil, fmt.Errorf("bitext line %d: expected 2 tab-separated columns, got %d", i+1, len(cols))
		}

		source := strings.TrimSpace(cols[0])
		target := strings.TrimSpace(cols[1])
		bt.SourceWordCount += len(strings.Fields(source))
		bt.TargetWordCount += len(strings.Fields(target))

		bt.Segments = append(bt.Segments, &domain.Segment{
			Seq:        seq,
			SourceText: source,
			TargetText: target,
		})
		seq++
	}

	if len(bt.Segments) == 0 {
		return nil, fmt.Errorf("bitext file contains no segments")
	}
	return &bt, nil
}
